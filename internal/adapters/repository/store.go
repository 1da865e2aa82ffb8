// Package repository defines the result history store interface and errors.
package repository

import (
	"context"

	"github.com/synheart/emotion-go/internal/domain/model"
)

// Store provides read/write access to emitted emotion results.
type Store interface {
	// Append records a new result as the most recent entry.
	Append(ctx context.Context, r model.EmotionResult)

	// Latest returns the most recent result.
	// Returns ErrEmpty if no result has been recorded yet.
	Latest(ctx context.Context) (model.EmotionResult, error)

	// Recent returns up to limit results, newest first.
	// Returns ErrInvalidLimit if limit is not positive.
	Recent(ctx context.Context, limit int) ([]model.EmotionResult, error)

	// Count returns the number of results currently retained.
	Count(ctx context.Context) int
}
