package report

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateForTest inserts the report and, when testRequestID is set,
	// resolves that test request (status + result_id) in the same
	// transaction. Returns labtest.ErrAlreadyResolved if the request
	// already carries a result.
	CreateForTest(ctx context.Context, r *Report, testRequestID *uuid.UUID) error

	// GetByID retrieves a report. Returns ErrReportNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)

	// UpdateStatus moves a report through PENDING/PROCESSING/READY/REVIEWED.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	List(ctx context.Context, q *ListQuery) ([]*Report, error)
}
