package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateWithMedications inserts the prescription and its ordered line
	// items in one transaction, finding or creating each Medicine catalog
	// row by case-insensitive name.
	CreateWithMedications(ctx context.Context, p *Prescription, specs []MedicationSpec) error

	// GetByID retrieves a prescription with its line items preloaded.
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	List(ctx context.Context, q *ListQuery) ([]*Prescription, error)
}
