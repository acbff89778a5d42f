package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested batch does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures batch listing with filtering and pagination.
type QueryOpts struct {
	Limit      int       // max results (0 = unlimited)
	TemplateID string    // exact match when non-empty
	From       time.Time // created_at >= From
	To         time.Time // created_at <= To
}

// ItemRecord is one task reference inside a stored variant.
type ItemRecord struct {
	OrderIndex   int
	SlotIndex    int
	TaskID       string
	SectionLabel string
}

// VariantRecord is one stored variant with its ordered items.
type VariantRecord struct {
	Index int
	Seed  string
	Items []ItemRecord
}

// BatchRecord is a stored generation request and all of its variants.
type BatchRecord struct {
	ID         string
	Sequence   int64
	TemplateID string
	TopicID    string
	Title      string
	BaseSeed   string
	Shuffled   bool
	CreatedAt  time.Time
	Variants   []VariantRecord
}

// BatchSummary is the listing view of a batch, without items.
type BatchSummary struct {
	ID            string
	Sequence      int64
	TemplateID    string
	Title         string
	BaseSeed      string
	VariantsCount int
	CreatedAt     time.Time
}

// VariantRepo stores and reads variant batches.
type VariantRepo interface {
	// SaveBatch stores the batch and all its variants in one transaction.
	// It assigns ID (when empty), Sequence and CreatedAt (when zero).
	SaveBatch(ctx context.Context, b *BatchRecord) error

	// GetBatch returns a batch with its variants, or ErrNotFound.
	GetBatch(ctx context.Context, id string) (*BatchRecord, error)

	// GetBatchBySequence looks a batch up by its user-facing number.
	GetBatchBySequence(ctx context.Context, seq int64) (*BatchRecord, error)

	// ListBatches returns batch summaries, newest first.
	ListBatches(ctx context.Context, opts QueryOpts) ([]BatchSummary, error)

	// DeleteBatch removes a batch and its variants.
	DeleteBatch(ctx context.Context, id string) error
}
