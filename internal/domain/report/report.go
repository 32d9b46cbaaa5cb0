package report

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusReady      Status = "READY"
	StatusReviewed   Status = "REVIEWED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusReady, StatusReviewed:
		return true
	}
	return false
}

// Report is a named, typed, dated result document tied to a patient and
// doctor, optionally resolving a test request.
type Report struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	Name       string    `gorm:"column:name;type:varchar(200);not null"`
	ReportType string    `gorm:"column:report_type;type:varchar(100);not null"`
	Date       time.Time `gorm:"column:date;not null;index"`
	Results    string    `gorm:"column:results;type:text"`

	Status Status `gorm:"column:status;type:varchar(20);not null;default:'PENDING';index"`
}

func (Report) TableName() string {
	return "clinical.medical_reports"
}

type CreateReportCommand struct {
	PatientID     uuid.UUID
	DoctorID      uuid.UUID
	Name          string
	ReportType    string
	Results       string
	TestRequestID *uuid.UUID
}

type ListQuery struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *Status
}
