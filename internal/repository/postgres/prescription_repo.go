package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medibook/medibook-api/internal/domain/prescription"
)

type PrescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

func (r *PrescriptionRepository) CreateWithMedications(ctx context.Context, p *prescription.Prescription, specs []prescription.MedicationSpec) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Medications").Create(p).Error; err != nil {
			return fmt.Errorf("creating prescription: %w", err)
		}

		for i, spec := range specs {
			med, err := findOrCreateMedicine(tx, spec)
			if err != nil {
				return err
			}

			line := prescription.Medication{
				PrescriptionID: p.ID,
				MedicineID:     med.ID,
				Position:       i,
				Dosage:         orDefault(spec.Dosage, "1 tablet"),
				Frequency:      orDefault(spec.Frequency, "As directed"),
				Duration:       orDefault(spec.Duration, "As needed"),
				Instructions:   spec.Instructions,
			}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("creating medication line: %w", err)
			}
			line.Medicine = med
			p.Medications = append(p.Medications, line)
		}
		return nil
	})
}

// findOrCreateMedicine matches catalog entries by case-insensitive name,
// creating one on first use.
func findOrCreateMedicine(tx *gorm.DB, spec prescription.MedicationSpec) (*prescription.Medicine, error) {
	var med prescription.Medicine
	err := tx.Where("LOWER(name) = LOWER(?)", spec.Name).First(&med).Error
	if err == nil {
		return &med, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("looking up medicine: %w", err)
	}

	med = prescription.Medicine{
		Name:        spec.Name,
		GenericName: spec.GenericName,
		Description: spec.Name + " " + spec.Dosage,
		DosageForm:  spec.DosageForm,
		Strength:    spec.Dosage,
		Category:    spec.Category,
	}
	if err := tx.Create(&med).Error; err != nil {
		return nil, fmt.Errorf("creating medicine: %w", err)
	}
	return &med, nil
}

func (r *PrescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	var p prescription.Prescription
	err := r.db.WithContext(ctx).
		Preload("Medications", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Medications.Medicine").
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, prescription.ErrPrescriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching prescription: %w", err)
	}
	return &p, nil
}

func (r *PrescriptionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status prescription.Status) error {
	res := r.db.WithContext(ctx).Model(&prescription.Prescription{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("updating prescription status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return prescription.ErrPrescriptionNotFound
	}
	return nil
}

func (r *PrescriptionRepository) List(ctx context.Context, q *prescription.ListQuery) ([]*prescription.Prescription, error) {
	db := r.db.WithContext(ctx).Model(&prescription.Prescription{})
	if q.PatientID != nil {
		db = db.Where("patient_id = ?", *q.PatientID)
	}
	if q.DoctorID != nil {
		db = db.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.Status != nil {
		db = db.Where("status = ?", *q.Status)
	}

	var items []*prescription.Prescription
	if err := db.Preload("Medications").Preload("Medications.Medicine").
		Order("issue_date DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("listing prescriptions: %w", err)
	}
	return items, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
