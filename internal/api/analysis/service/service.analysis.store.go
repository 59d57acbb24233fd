// Package analysissvc implements the analysis service and the document stores behind it.
package analysissvc

import (
	"context"

	"github.com/scottcame/piet/internal/api/analysis/models"
)

// AnalysisStore is the document store the service persists analyses in.
// Implementations report a missing id with common.ErrNotFound.
type AnalysisStore interface {
	// Save stores a, assigning a new id when a.ID is empty, and returns the stored entity
	Save(ctx context.Context, a *models.Analysis) (*models.Analysis, error)
	FindById(ctx context.Context, id string) (*models.Analysis, error)
	FindAll(ctx context.Context) ([]models.Analysis, error)
	// DeleteById succeeds when id is not stored
	DeleteById(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// ReadCounterIncrementer is implemented by stores that can bump readCounter in one atomic call
type ReadCounterIncrementer interface {
	// IncrementReadCounter adds 1 to readCounter of id and returns the updated entity
	IncrementReadCounter(ctx context.Context, id string) (*models.Analysis, error)
}

// Pinger is implemented by stores with a remote backend
type Pinger interface {
	Ping(ctx context.Context) error
}
