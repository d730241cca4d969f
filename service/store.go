package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexplain/legal-demystifier/config"
	"github.com/lexplain/legal-demystifier/model"
)

// FileEntry is a single uploaded file handed to AddDocuments.
type FileEntry struct {
	FileName string
	Content  string
}

// DocumentStore is the single source of truth for all documents. All
// mutation goes through its narrow operations; callers never write document
// fields directly. Updates to different ids never interfere, and result
// fields are only ever set together with their status under one lock
// acquisition.
type DocumentStore struct {
	documents    map[string]*model.Document
	order        []string // insertion order of ids
	mu           sync.RWMutex
	maxDocuments int // Maximum documents to keep, 0 = unlimited
}

// NewDocumentStore creates a store with the given configuration.
func NewDocumentStore(cfg *config.StoreConfig) *DocumentStore {
	maxDocuments := cfg.MaxDocuments
	if maxDocuments < 0 {
		maxDocuments = 0
	}
	return &DocumentStore{
		documents:    make(map[string]*model.Document),
		maxDocuments: maxDocuments,
	}
}

// AddDocuments creates one Document per entry, appended in call order, each
// with a fresh id that cannot collide with any current or removed id.
func (s *DocumentStore) AddDocuments(tenant string, entries []FileEntry) []*model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	created := make([]*model.Document, 0, len(entries))
	for _, entry := range entries {
		doc := &model.Document{
			ID:              uuid.New().String(),
			FileName:        entry.FileName,
			OriginalContent: entry.Content,
			Tenant:          tenant,
			AnalysisStatus:  model.AnalysisPending,
			ContractStatus:  model.ContractNone,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		s.documents[doc.ID] = doc
		s.order = append(s.order, doc.ID)
		created = append(created, snapshot(doc))
	}

	s.cleanupIfNeeded()
	return created
}

// Get returns a snapshot of the document, or nil if the id is unknown.
func (s *DocumentStore) Get(id string) *model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil
	}
	return snapshot(doc)
}

// GetByTenant returns snapshots of the tenant's documents in insertion order.
func (s *DocumentStore) GetByTenant(tenant string) []*model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Document
	for _, id := range s.order {
		if doc, ok := s.documents[id]; ok && doc.Tenant == tenant {
			result = append(result, snapshot(doc))
		}
	}
	return result
}

// Delete removes a document. Unknown ids are a no-op.
func (s *DocumentStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return
	}
	delete(s.documents, id)
	s.removeFromOrder(id)
}

// SetAnalysisStatus transitions the general analysis status for every id in
// the set. Unknown ids are skipped; the error message is cleared unless the
// new status is error.
func (s *DocumentStore) SetAnalysisStatus(ids []string, status model.AnalysisStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if doc, ok := s.documents[id]; ok {
			doc.AnalysisStatus = status
			if status == model.AnalysisError {
				doc.ErrorMsg = errMsg
			} else {
				doc.ErrorMsg = ""
			}
			doc.UpdatedAt = time.Now()
		}
	}
}

// SetAnalysisResult sets the analysis result and marks the general lifecycle
// complete in one step. No observer can see one without the other.
func (s *DocumentStore) SetAnalysisResult(id string, result *model.SimplifiedAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.documents[id]; ok {
		doc.Analysis = result
		doc.AnalysisStatus = model.AnalysisComplete
		doc.ErrorMsg = ""
		doc.UpdatedAt = time.Now()
	}
}

// SetContractStatus transitions the contract analysis status. It never
// touches the general lifecycle fields.
func (s *DocumentStore) SetContractStatus(id string, status model.ContractStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.documents[id]; ok {
		doc.ContractStatus = status
		if status == model.ContractError {
			doc.ContractErrorMsg = errMsg
		} else {
			doc.ContractErrorMsg = ""
		}
		doc.UpdatedAt = time.Now()
	}
}

// SetContractResult sets the contract analysis result and marks the contract
// lifecycle complete in one step.
func (s *DocumentStore) SetContractResult(id string, result *model.ContractAnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.documents[id]; ok {
		doc.ContractAnalysis = result
		doc.ContractStatus = model.ContractComplete
		doc.ContractErrorMsg = ""
		doc.UpdatedAt = time.Now()
	}
}

// Count returns the number of documents in the store
func (s *DocumentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// cleanupIfNeeded removes oldest documents if the store exceeds maxDocuments.
// Must be called with lock held. The order slice is insertion order, so the
// front is always the oldest.
func (s *DocumentStore) cleanupIfNeeded() {
	if s.maxDocuments <= 0 {
		return // Unlimited
	}

	for len(s.documents) > s.maxDocuments && len(s.order) > 0 {
		oldest := s.order[0]
		s.order = s.order[1:]
		if doc, ok := s.documents[oldest]; ok {
			slog.Info("auto-cleaning old document",
				"document_id", doc.ID,
				"created_at", doc.CreatedAt,
			)
			delete(s.documents, oldest)
		}
	}
}

// removeFromOrder drops an id from the insertion-order slice.
// Must be called with lock held.
func (s *DocumentStore) removeFromOrder(id string) {
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// snapshot returns a shallow copy of the document. Result pointers are
// shared, but results are never mutated after being set.
func snapshot(doc *model.Document) *model.Document {
	cp := *doc
	return &cp
}
