// Package media records metadata for uploaded objects and lists it by folder.
package media

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Record is the metadata row for one uploaded object.
type Record struct {
	ID         string    `json:"id"         dynamodbav:"id"          example:"e7eedc79-0707-4fe4-8734-526b7ef13a7b"`
	URL        string    `json:"url"        dynamodbav:"url"         example:"https://media.stillwaterlodge.com/gallery/1700000000000-lake.jpg"`
	Folder     string    `json:"folder"     dynamodbav:"folder"      example:"gallery"`
	UploadedAt time.Time `json:"uploadedAt" dynamodbav:"uploaded_at" example:"2026-02-27T14:48:34Z"`
}

// Repository persists media records. Records are never mutated.
type Repository interface {
	// Insert writes one record keyed by its ID.
	Insert(ctx context.Context, rec Record) error
	// List returns all records in folder, or every record when folder is empty.
	List(ctx context.Context, folder string) ([]Record, error)
}

// MemoryRepository is an in-process Repository, newest records first.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Insert appends rec.
func (m *MemoryRepository) Insert(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

// List returns matching records ordered by upload time, newest first.
func (m *MemoryRepository) List(_ context.Context, folder string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		if folder == "" || rec.Folder == folder {
			out = append(out, rec)
		}
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		return b.UploadedAt.Compare(a.UploadedAt)
	})
	return out, nil
}
