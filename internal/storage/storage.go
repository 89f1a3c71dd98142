// Package storage defines where record batches come from and where optimized
// batches go. A Source produces a Collection, a Sink persists one; concrete
// database backends live in subpackages so drivers stay out of the core.
package storage

import (
	"context"

	"recordopt/pkg/records"
)

// Source reads a batch of records.
type Source interface {
	Read(ctx context.Context) (records.Collection, error)
}

// Sink writes a batch of records.
type Sink interface {
	Write(ctx context.Context, recs records.Collection) error
}
