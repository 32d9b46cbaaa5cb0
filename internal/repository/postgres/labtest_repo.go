package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medibook/medibook-api/internal/domain/labtest"
)

type LabTestRepository struct {
	db *gorm.DB
}

func NewLabTestRepository(db *gorm.DB) *LabTestRepository {
	return &LabTestRepository{db: db}
}

func (r *LabTestRepository) CreateBatch(ctx context.Context, requests []*labtest.TestRequest) error {
	if len(requests) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(requests).Error; err != nil {
		return fmt.Errorf("creating test requests: %w", err)
	}
	return nil
}

func (r *LabTestRepository) GetByID(ctx context.Context, id uuid.UUID) (*labtest.TestRequest, error) {
	var t labtest.TestRequest
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, labtest.ErrTestRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching test request: %w", err)
	}
	return &t, nil
}

func (r *LabTestRepository) List(ctx context.Context, q *labtest.ListQuery) ([]*labtest.TestRequest, error) {
	db := r.db.WithContext(ctx).Model(&labtest.TestRequest{})
	if q.PatientID != nil {
		db = db.Where("patient_id = ?", *q.PatientID)
	}
	if q.RequestedBy != nil {
		db = db.Where("requested_by = ?", *q.RequestedBy)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}

	var items []*labtest.TestRequest
	if err := db.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("listing test requests: %w", err)
	}
	return items, nil
}
