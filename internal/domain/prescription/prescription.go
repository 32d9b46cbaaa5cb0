package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Status is independent of the appointment lifecycle.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusExpired   Status = "EXPIRED"
)

// DefaultValidity is how long a prescription stays usable after issue.
const DefaultValidity = 30 * 24 * time.Hour

// Medicine is a catalog entry shared across prescriptions, matched by
// case-insensitive name and created on first use.
type Medicine struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Name        string `gorm:"column:name;type:varchar(255);not null;uniqueIndex"`
	GenericName string `gorm:"column:generic_name;type:varchar(255)"`
	Description string `gorm:"column:description;type:text"`
	DosageForm  string `gorm:"column:dosage_form;type:varchar(100)"`
	Strength    string `gorm:"column:strength;type:varchar(50)"`
	Category    string `gorm:"column:category;type:varchar(100)"`
}

func (Medicine) TableName() string {
	return "clinical.medicines"
}

// Prescription is a dated set of medication line items issued after a
// consultation.
type Prescription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	IssueDate  time.Time `gorm:"column:issue_date;not null;index"`
	ExpiryDate time.Time `gorm:"column:expiry_date;not null;index"`

	Status Status `gorm:"column:status;type:varchar(20);not null;default:'ACTIVE';index"`

	// Medications is the ordered list of line items.
	Medications []Medication `gorm:"foreignKey:PrescriptionID"`
}

func (Prescription) TableName() string {
	return "clinical.prescriptions"
}

func (p *Prescription) IsExpired() bool {
	return time.Now().After(p.ExpiryDate)
}

// Medication is one line item on a prescription.
type Medication struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PrescriptionID uuid.UUID `gorm:"column:prescription_id;type:uuid;not null;index"`
	MedicineID     uuid.UUID `gorm:"column:medicine_id;type:uuid;not null;index"`
	Position       int       `gorm:"column:position;not null"`

	Dosage       string `gorm:"column:dosage;type:varchar(100);not null"`
	Frequency    string `gorm:"column:frequency;type:varchar(100);not null"`
	Duration     string `gorm:"column:duration;type:varchar(100)"`
	Instructions string `gorm:"column:instructions;type:text"`

	Medicine *Medicine `gorm:"foreignKey:MedicineID"`
}

func (Medication) TableName() string {
	return "clinical.prescription_medications"
}

// MedicationSpec is one medication in a Prescribe call. Missing fields get
// the defaults the pharmacy expects.
type MedicationSpec struct {
	Name         string
	GenericName  string
	Dosage       string
	Frequency    string
	Duration     string
	Instructions string
	DosageForm   string
	Category     string
}

type ListQuery struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *Status
}
