package labtest

import (
	"time"

	"github.com/google/uuid"
)

// Status lifecycle: REQUESTED when the doctor orders the test, PENDING once
// the lab picks it up, COMPLETED when a medical report is attached via
// ResultID.
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// TestRequest is a doctor-issued order for a diagnostic test, resolved by
// an attached medical report.
type TestRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID   uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	RequestedBy uuid.UUID `gorm:"column:requested_by;type:uuid;not null;index"` // doctor id

	TestName    string `gorm:"column:test_name;type:varchar(200);not null"`
	TestType    string `gorm:"column:test_type;type:varchar(100);not null"`
	Description string `gorm:"column:description;type:text"`

	Status Status `gorm:"column:status;type:varchar(20);not null;default:'REQUESTED';index"`

	// ResultID references the medical report that resolved this request.
	ResultID *uuid.UUID `gorm:"column:result_id;type:uuid;index"`
}

func (TestRequest) TableName() string {
	return "clinical.test_requests"
}

func (t *TestRequest) IsResolved() bool {
	return t.ResultID != nil
}

// TestSpec is one requested test in a RequestTests call.
type TestSpec struct {
	TestName    string
	TestType    string
	Description string
}

type ListQuery struct {
	PatientID   *uuid.UUID
	RequestedBy *uuid.UUID
	Status      *Status
}
