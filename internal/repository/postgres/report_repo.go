package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medibook/medibook-api/internal/domain/labtest"
	"github.com/medibook/medibook-api/internal/domain/report"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CreateForTest writes the report and resolves the originating test request
// together, so a request can never point at a report that was rolled back.
func (r *ReportRepository) CreateForTest(ctx context.Context, rep *report.Report, testRequestID *uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rep).Error; err != nil {
			return fmt.Errorf("creating report: %w", err)
		}
		if testRequestID == nil {
			return nil
		}

		var t labtest.TestRequest
		err := tx.First(&t, "id = ?", *testRequestID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return labtest.ErrTestRequestNotFound
		}
		if err != nil {
			return fmt.Errorf("fetching test request: %w", err)
		}
		if t.ResultID != nil {
			return labtest.ErrAlreadyResolved
		}

		return tx.Model(&t).Updates(map[string]any{
			"result_id": rep.ID,
			"status":    labtest.StatusCompleted,
		}).Error
	})
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*report.Report, error) {
	var rep report.Report
	err := r.db.WithContext(ctx).First(&rep, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, report.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching report: %w", err)
	}
	return &rep, nil
}

func (r *ReportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status report.Status) error {
	res := r.db.WithContext(ctx).Model(&report.Report{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("updating report status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return report.ErrReportNotFound
	}
	return nil
}

func (r *ReportRepository) List(ctx context.Context, q *report.ListQuery) ([]*report.Report, error) {
	db := r.db.WithContext(ctx).Model(&report.Report{})
	if q.PatientID != nil {
		db = db.Where("patient_id = ?", *q.PatientID)
	}
	if q.DoctorID != nil {
		db = db.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}

	var items []*report.Report
	if err := db.Order("date DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return items, nil
}
