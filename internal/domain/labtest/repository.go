package labtest

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateBatch persists a set of test requests from one consultation.
	CreateBatch(ctx context.Context, requests []*TestRequest) error

	// GetByID retrieves a test request. Returns ErrTestRequestNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*TestRequest, error)

	List(ctx context.Context, q *ListQuery) ([]*TestRequest, error)
}
