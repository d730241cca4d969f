package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lexplain/legal-demystifier/config"
	"github.com/lexplain/legal-demystifier/model"
)

// ArchiveService keeps copies of uploaded originals and exported calendars
// in object storage. The in-memory store is authoritative; the archive is a
// side channel and entirely optional.
type ArchiveService struct {
	client *minio.Client
	bucket string
	config *config.ArchiveConfig
}

func NewArchiveService(cfg *config.ArchiveConfig) (*ArchiveService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &ArchiveService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *ArchiveService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// SaveOriginal stores the uploaded document text under tenant/id/filename.
func (s *ArchiveService) SaveOriginal(ctx context.Context, doc *model.Document) error {
	objectName := originalObjectName(doc)
	reader := strings.NewReader(doc.OriginalContent)
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, int64(reader.Len()), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return fmt.Errorf("failed to archive original: %w", err)
	}

	return nil
}

// SaveCalendar stores an exported calendar file next to the original.
func (s *ArchiveService) SaveCalendar(ctx context.Context, doc *model.Document, content string) error {
	objectName := fmt.Sprintf("%s/%s/%s", doc.Tenant, doc.ID, CalendarFileName(doc.FileName))
	reader := strings.NewReader(content)
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, int64(reader.Len()), minio.PutObjectOptions{
		ContentType: "text/calendar; charset=utf-8",
	})
	if err != nil {
		return fmt.Errorf("failed to archive calendar: %w", err)
	}

	return nil
}

// DeleteDocument removes every archived object for a document.
func (s *ArchiveService) DeleteDocument(ctx context.Context, doc *model.Document) error {
	prefix := fmt.Sprintf("%s/%s/", doc.Tenant, doc.ID)
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return fmt.Errorf("failed to list archive objects: %w", object.Err)
		}
		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to delete archive object: %w", err)
		}
	}

	return nil
}

func originalObjectName(doc *model.Document) string {
	return fmt.Sprintf("%s/%s/%s", doc.Tenant, doc.ID, doc.FileName)
}
