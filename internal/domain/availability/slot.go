package availability

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for slot dates.
const DateLayout = "2006-01-02"

// Slot is one bookable 30-minute window for a doctor. The
// (doctor_id, date, time_slot) tuple is unique: a doctor cannot have two
// slot records for the same date and time.
type Slot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	DoctorID uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;uniqueIndex:idx_slots_doctor_date_time;index"`
	Date     time.Time `gorm:"column:date;type:date;not null;uniqueIndex:idx_slots_doctor_date_time"`
	TimeSlot string    `gorm:"column:time_slot;type:varchar(5);not null;uniqueIndex:idx_slots_doctor_date_time"`

	// IsBooked mirrors whether a non-cancelled appointment occupies this
	// slot. Mutated only through Claim/Release.
	IsBooked bool `gorm:"column:is_booked;not null;default:false;index"`
}

func (Slot) TableName() string {
	return "clinical.availability_slots"
}

// DateKey returns the slot date formatted for grouping and JSON output.
func (s *Slot) DateKey() string {
	return s.Date.Format(DateLayout)
}

// NormalizeDate strips the time-of-day component so all slot dates compare
// equal regardless of the caller's clock or zone.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var timeSlotPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ValidTimeSlot reports whether s is a well-formed HH:MM time-of-day string.
func ValidTimeSlot(s string) bool {
	return timeSlotPattern.MatchString(s)
}
