package service

import (
	"context"
	"testing"

	"github.com/lexplain/legal-demystifier/config"
	"github.com/lexplain/legal-demystifier/model"
)

func TestNewArchiveService(t *testing.T) {
	cfg := &config.ArchiveConfig{
		Enabled:   true,
		Endpoint:  "localhost:9000",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "test",
		UseSSL:    false,
	}

	svc, err := NewArchiveService(cfg)
	// Client creation does not dial; the connection is exercised on first
	// operation.
	if err != nil {
		t.Logf("NewArchiveService returned error: %v", err)
	} else if svc == nil {
		t.Error("Expected non-nil service")
	}
}

func TestOriginalObjectName(t *testing.T) {
	doc := &model.Document{
		ID:       "doc-1",
		Tenant:   "tenant1",
		FileName: "lease.txt",
	}

	got := originalObjectName(doc)
	want := "tenant1/doc-1/lease.txt"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestArchiveServiceWithCancelledContext(t *testing.T) {
	cfg := &config.ArchiveConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "test",
	}

	svc, err := NewArchiveService(cfg)
	if err != nil {
		t.Skip("Could not create archive service")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := &model.Document{ID: "x", Tenant: "t", FileName: "f.txt", OriginalContent: "body"}
	if err := svc.SaveOriginal(ctx, doc); err == nil {
		t.Log("Save with cancelled context - error handling depends on client implementation")
	}
}
