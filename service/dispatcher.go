package service

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/lexplain/legal-demystifier/config"
	"github.com/lexplain/legal-demystifier/model"
	"github.com/lexplain/legal-demystifier/pkg/logger"
)

// AnalysisDispatcher turns a batch analysis request into independent
// collaborator calls and reconciles results back into the store. Failures
// are converted to document status at this boundary and never propagate
// further; one document's failure never affects its siblings.
type AnalysisDispatcher struct {
	store    *DocumentStore
	analyzer Analyzer
	sem      *semaphore.Weighted
}

func NewAnalysisDispatcher(store *DocumentStore, analyzer Analyzer, cfg *config.DispatcherConfig) *AnalysisDispatcher {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &AnalysisDispatcher{
		store:    store,
		analyzer: analyzer,
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// AnalyzeBatch requests general analysis for a set of document ids. Unknown
// ids are silently skipped. Every known id is marked analyzing before any
// external call is issued, then one concurrent call runs per id. Returns the
// accepted ids immediately; results land in the store as calls complete.
// There is no automatic retry; a retry is a new AnalyzeBatch for the failed
// ids.
func (d *AnalysisDispatcher) AnalyzeBatch(ctx context.Context, ids []string) []string {
	var valid []string
	for _, id := range ids {
		if d.store.Get(id) != nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	d.store.SetAnalysisStatus(valid, model.AnalysisAnalyzing, "")

	go d.runBatch(context.WithoutCancel(ctx), valid)

	return valid
}

// runBatch issues one collaborator call per id. Per-document isolation: each
// call's outcome updates only its own document.
func (d *AnalysisDispatcher) runBatch(ctx context.Context, ids []string) {
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			d.analyzeOne(ctx, id)
		}(id)
	}
	wg.Wait()
}

func (d *AnalysisDispatcher) analyzeOne(ctx context.Context, id string) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		d.store.SetAnalysisStatus([]string{id}, model.AnalysisError, err.Error())
		return
	}
	defer d.sem.Release(1)

	doc := d.store.Get(id)
	if doc == nil {
		// Removed while queued; nothing to update.
		return
	}

	ctx = logger.WithDocument(ctx, id)

	result, err := d.analyzer.AnalyzeGeneral(ctx, doc.OriginalContent)
	if err != nil {
		logger.Warn(ctx, "document analysis failed", "error", err)
		d.store.SetAnalysisStatus([]string{id}, model.AnalysisError, err.Error())
		return
	}

	d.store.SetAnalysisResult(id, result)
	logger.Info(ctx, "document analysis complete")
}

// AnalyzeForReminders requests contract analysis for a single document. It
// operates only on the contract lifecycle; the general analysis fields are
// never touched. Returns false if the id is unknown.
func (d *AnalysisDispatcher) AnalyzeForReminders(ctx context.Context, id string) bool {
	if d.store.Get(id) == nil {
		return false
	}

	d.store.SetContractStatus(id, model.ContractPending, "")

	go d.runReminders(context.WithoutCancel(ctx), id)

	return true
}

func (d *AnalysisDispatcher) runReminders(ctx context.Context, id string) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		d.store.SetContractStatus(id, model.ContractError, err.Error())
		return
	}
	defer d.sem.Release(1)

	doc := d.store.Get(id)
	if doc == nil {
		return
	}

	ctx = logger.WithDocument(ctx, id)

	result, err := d.analyzer.AnalyzeContract(ctx, doc.OriginalContent)
	if err != nil {
		logger.Warn(ctx, "contract analysis failed", "error", err)
		d.store.SetContractStatus(id, model.ContractError, err.Error())
		return
	}

	d.store.SetContractResult(id, result)
	logger.Info(ctx, "contract analysis complete",
		"obligations", len(result.Obligations),
		"key_dates", len(result.KeyDates),
		"payment_terms", len(result.PaymentTerms),
	)
}
