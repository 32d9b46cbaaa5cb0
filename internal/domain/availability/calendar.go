package availability

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultTemplate is the weekly time-slot template: 30-minute windows
// from 09:00 to 16:30 with a lunch gap between 11:30 and 13:00.
var DefaultTemplate = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"13:00", "13:30", "14:00", "14:30", "15:00", "15:30", "16:00", "16:30",
}

// DefaultWorkingDays excludes weekends.
func DefaultWorkingDays(d time.Weekday) bool {
	return d != time.Saturday && d != time.Sunday
}

// Calendar produces the candidate slots for a doctor over a fixed horizon.
// It runs once at doctor-provisioning time; there is no mechanism to edit
// or regenerate a doctor's slots afterwards.
type Calendar struct {
	Template    []string
	HorizonDays int
	MinPerDay   int
	MaxPerDay   int
	WorkingDay  func(time.Weekday) bool

	rng *rand.Rand
}

// Option customizes a Calendar.
type Option func(*Calendar)

// WithRand injects a seeded source, used by tests for determinism.
func WithRand(r *rand.Rand) Option {
	return func(c *Calendar) { c.rng = r }
}

// WithWorkingDays overrides the working-days predicate.
func WithWorkingDays(fn func(time.Weekday) bool) Option {
	return func(c *Calendar) { c.WorkingDay = fn }
}

// WithTemplate overrides the weekly time-slot template. Duplicate entries
// are removed so generated slots stay unique per day.
func WithTemplate(template []string) Option {
	return func(c *Calendar) { c.Template = dedupe(template) }
}

func NewCalendar(horizonDays, minPerDay, maxPerDay int, opts ...Option) *Calendar {
	c := &Calendar{
		Template:    DefaultTemplate,
		HorizonDays: horizonDays,
		MinPerDay:   minPerDay,
		MaxPerDay:   maxPerDay,
		WorkingDay:  DefaultWorkingDays,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 60
	}
	if c.MinPerDay < 1 {
		c.MinPerDay = 1
	}
	if c.MaxPerDay < c.MinPerDay {
		c.MaxPerDay = c.MinPerDay
	}
	return c
}

// Generate walks the horizon starting at from and returns one unbooked Slot
// per selected (date, timeSlot) pair. Each working day gets a random subset
// of the template, sized between MinPerDay and MaxPerDay; non-working days
// get none. The result never contains two slots with the same date and time.
func (c *Calendar) Generate(doctorID uuid.UUID, from time.Time) []*Slot {
	start := NormalizeDate(from)
	slots := make([]*Slot, 0, c.HorizonDays*c.MaxPerDay)

	for i := 0; i < c.HorizonDays; i++ {
		day := start.AddDate(0, 0, i)
		if !c.WorkingDay(day.Weekday()) {
			continue
		}
		for _, ts := range c.pickDaily() {
			slots = append(slots, &Slot{
				DoctorID: doctorID,
				Date:     day,
				TimeSlot: ts,
				IsBooked: false,
			})
		}
	}

	return slots
}

// pickDaily selects a random subset of the template in ascending order.
func (c *Calendar) pickDaily() []string {
	n := c.MinPerDay + c.rng.Intn(c.MaxPerDay-c.MinPerDay+1)
	if n > len(c.Template) {
		n = len(c.Template)
	}

	idx := c.rng.Perm(len(c.Template))[:n]
	sort.Ints(idx)

	picked := make([]string, n)
	for i, j := range idx {
		picked[i] = c.Template[j]
	}
	return picked
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
