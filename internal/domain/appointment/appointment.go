package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook-api/internal/domain/availability"
)

// DefaultType is used when a booking request does not name a type.
const DefaultType = "Consultation"

// State transitions:
//
//	PENDING → CONFIRMED → COMPLETED
//	PENDING → CANCELLED
//	CONFIRMED → CANCELLED
//
// COMPLETED and CANCELLED are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Appointment links one patient, one doctor, one availability slot, and a
// status. Its (doctor_id, date, time_slot) always corresponds to exactly
// one slot whose is_booked stays true until the appointment is cancelled.
type Appointment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	Date     time.Time `gorm:"column:date;type:date;not null;index"`
	TimeSlot string    `gorm:"column:time_slot;type:varchar(5);not null"`
	Type     string    `gorm:"column:type;type:varchar(50);not null;default:'Consultation'"`
	Status   Status    `gorm:"column:status;type:varchar(20);not null;default:'PENDING';index"`

	Symptoms string `gorm:"column:symptoms;type:text"`
	Notes    string `gorm:"column:notes;type:text"`

	ConfirmedAt *time.Time `gorm:"column:confirmed_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`

	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CancellationReason string     `gorm:"column:cancellation_reason;type:text"`
	CancelledBy        *uuid.UUID `gorm:"column:cancelled_by;type:uuid"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

// VideoRoomID derives the consultation room identifier handed to the video
// widget. The appointment id is the only input.
func (a *Appointment) VideoRoomID() string {
	return "consult-" + a.ID.String()
}

func (a *Appointment) CanTransitionTo(newStatus Status) bool {
	allowed := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCompleted, StatusCancelled},
		StatusCompleted: {},
		StatusCancelled: {},
	}

	for _, s := range allowed[a.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// Confirm is doctor-initiated acceptance of a pending booking.
func (a *Appointment) Confirm() error {
	if !a.CanTransitionTo(StatusConfirmed) {
		return ErrInvalidStatusTransition
	}
	now := time.Now()
	a.Status = StatusConfirmed
	a.ConfirmedAt = &now
	return nil
}

func (a *Appointment) Complete() error {
	if !a.CanTransitionTo(StatusCompleted) {
		return ErrInvalidStatusTransition
	}
	now := time.Now()
	a.Status = StatusCompleted
	a.CompletedAt = &now
	return nil
}

func (a *Appointment) Cancel(reason string, cancelledBy uuid.UUID) error {
	if !a.CanTransitionTo(StatusCancelled) {
		return ErrInvalidStatusTransition
	}
	now := time.Now()
	a.Status = StatusCancelled
	a.CancelledAt = &now
	a.CancellationReason = reason
	a.CancelledBy = &cancelledBy
	return nil
}

// SlotDate returns the appointment date normalized the same way slot dates
// are stored, so slot lookups always match.
func (a *Appointment) SlotDate() time.Time {
	return availability.NormalizeDate(a.Date)
}

// DateKey returns the appointment date in the slot date wire format.
func (a *Appointment) DateKey() string {
	return a.SlotDate().Format(availability.DateLayout)
}

type BookCommand struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Date      time.Time
	TimeSlot  string
	Type      string
	Symptoms  string
}

type CancelCommand struct {
	Reason      string
	CancelledBy uuid.UUID
}

type ListQuery struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *Status
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

type PagedAppointments struct {
	Appointments []*Appointment
	TotalCount   int64
	Page         int
	PageSize     int
	TotalPages   int
}
