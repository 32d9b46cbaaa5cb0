package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook-api/internal/domain"
	"github.com/medibook/medibook-api/internal/domain/appointment"
	"github.com/medibook/medibook-api/internal/domain/availability"
	"github.com/medibook/medibook-api/internal/domain/doctor"
	"github.com/medibook/medibook-api/internal/domain/labtest"
	"github.com/medibook/medibook-api/internal/domain/patient"
	"github.com/medibook/medibook-api/internal/domain/prescription"
	"github.com/medibook/medibook-api/internal/domain/report"
)

func slotKey(doctorID uuid.UUID, date time.Time, timeSlot string) string {
	return doctorID.String() + "|" + availability.NormalizeDate(date).Format(availability.DateLayout) + "|" + timeSlot
}

// fakeSlotStore is an in-memory availability.Repository whose Claim has the
// same atomicity as the conditional update it stands in for.
type fakeSlotStore struct {
	mu    sync.Mutex
	slots map[string]*availability.Slot
}

func newFakeSlotStore() *fakeSlotStore {
	return &fakeSlotStore{slots: make(map[string]*availability.Slot)}
}

func (f *fakeSlotStore) BulkCreate(_ context.Context, slots []*availability.Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range slots {
		cp := *s
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		f.slots[slotKey(s.DoctorID, s.Date, s.TimeSlot)] = &cp
	}
	return nil
}

func (f *fakeSlotStore) ListOpen(_ context.Context, doctorID uuid.UUID) (map[string][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	out := make(map[string][]string)
	for _, s := range f.slots {
		if s.DoctorID != doctorID {
			continue
		}
		total++
		if s.IsBooked {
			continue
		}
		out[s.DateKey()] = append(out[s.DateKey()], s.TimeSlot)
	}
	if total == 0 {
		return nil, availability.ErrNoAvailability
	}
	for _, times := range out {
		sort.Strings(times)
	}
	return out, nil
}

func (f *fakeSlotStore) Claim(_ context.Context, doctorID uuid.UUID, date time.Time, timeSlot string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.claimLocked(doctorID, date, timeSlot)
}

func (f *fakeSlotStore) claimLocked(doctorID uuid.UUID, date time.Time, timeSlot string) error {
	s, ok := f.slots[slotKey(doctorID, date, timeSlot)]
	if !ok || s.IsBooked {
		return availability.ErrSlotTaken
	}
	s.IsBooked = true
	return nil
}

func (f *fakeSlotStore) Release(_ context.Context, doctorID uuid.UUID, date time.Time, timeSlot string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.slots[slotKey(doctorID, date, timeSlot)]; ok {
		s.IsBooked = false
	}
	return nil
}

func (f *fakeSlotStore) addOpenSlot(doctorID uuid.UUID, date time.Time, timeSlot string) {
	_ = f.BulkCreate(context.Background(), []*availability.Slot{{
		DoctorID: doctorID,
		Date:     availability.NormalizeDate(date),
		TimeSlot: timeSlot,
	}})
}

// fakeAppointmentRepo pairs with a fakeSlotStore so Book and
// CancelAndRelease carry the same slot side effects as the real thing.
type fakeAppointmentRepo struct {
	mu           sync.Mutex
	slots        *fakeSlotStore
	appointments map[uuid.UUID]*appointment.Appointment
}

func newFakeAppointmentRepo(slots *fakeSlotStore) *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		slots:        slots,
		appointments: make(map[uuid.UUID]*appointment.Appointment),
	}
}

func (f *fakeAppointmentRepo) Book(ctx context.Context, a *appointment.Appointment) error {
	if err := f.slots.Claim(ctx, a.DoctorID, a.Date, a.TimeSlot); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	cp := *a
	f.appointments[a.ID] = &cp
	return nil
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, a *appointment.Appointment, from appointment.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.appointments[a.ID]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	if stored.Status != from {
		return appointment.ErrInvalidStatusTransition
	}
	stored.Status = a.Status
	stored.ConfirmedAt = a.ConfirmedAt
	stored.CompletedAt = a.CompletedAt
	return nil
}

func (f *fakeAppointmentRepo) CancelAndRelease(ctx context.Context, a *appointment.Appointment, from appointment.Status) error {
	f.mu.Lock()
	stored, ok := f.appointments[a.ID]
	if !ok {
		f.mu.Unlock()
		return appointment.ErrAppointmentNotFound
	}
	if stored.Status != from {
		f.mu.Unlock()
		return appointment.ErrInvalidStatusTransition
	}
	stored.Status = a.Status
	stored.CancelledAt = a.CancelledAt
	stored.CancellationReason = a.CancellationReason
	stored.CancelledBy = a.CancelledBy
	f.mu.Unlock()

	return f.slots.Release(ctx, a.DoctorID, a.Date, a.TimeSlot)
}

func (f *fakeAppointmentRepo) List(_ context.Context, q *appointment.ListQuery) (*appointment.PagedAppointments, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*appointment.Appointment
	for _, a := range f.appointments {
		if q.PatientID != nil && a.PatientID != *q.PatientID {
			continue
		}
		if q.DoctorID != nil && a.DoctorID != *q.DoctorID {
			continue
		}
		if q.Status != nil && a.Status != *q.Status {
			continue
		}
		cp := *a
		matched = append(matched, &cp)
	}

	return &appointment.PagedAppointments{
		Appointments: matched,
		TotalCount:   int64(len(matched)),
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   1,
	}, nil
}

type fakePatientRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*patient.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*patient.Patient)}
}

func (f *fakePatientRepo) Create(_ context.Context, p *patient.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	f.patients[p.ID] = &cp
	return nil
}

func (f *fakePatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.patients[id]
	if !ok {
		return nil, patient.ErrPatientNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatientRepo) addActivePatient() uuid.UUID {
	id := uuid.New()
	_ = f.Create(context.Background(), &patient.Patient{
		ID:     id,
		Status: patient.StatusActive,
	})
	return id
}

type fakeDoctorRepo struct {
	mu      sync.Mutex
	doctors map[uuid.UUID]*doctor.Doctor
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{doctors: make(map[uuid.UUID]*doctor.Doctor)}
}

func (f *fakeDoctorRepo) Create(_ context.Context, d *doctor.Doctor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.doctors {
		if existing.Email == d.Email {
			return doctor.ErrDoctorAlreadyExists
		}
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	f.doctors[d.ID] = &cp
	return nil
}

func (f *fakeDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return nil, doctor.ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDoctorRepo) List(_ context.Context, q *doctor.ListDoctorsQuery) (*doctor.PagedDoctors, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*doctor.Doctor
	for _, d := range f.doctors {
		if q.Department != "" && d.Department != q.Department {
			continue
		}
		cp := *d
		matched = append(matched, &cp)
	}
	return &doctor.PagedDoctors{
		Doctors:    matched,
		TotalCount: int64(len(matched)),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: 1,
	}, nil
}

type fakeLabTestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*labtest.TestRequest
}

func newFakeLabTestRepo() *fakeLabTestRepo {
	return &fakeLabTestRepo{requests: make(map[uuid.UUID]*labtest.TestRequest)}
}

func (f *fakeLabTestRepo) CreateBatch(_ context.Context, requests []*labtest.TestRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range requests {
		r.ID = uuid.New()
		cp := *r
		f.requests[r.ID] = &cp
	}
	return nil
}

func (f *fakeLabTestRepo) GetByID(_ context.Context, id uuid.UUID) (*labtest.TestRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, labtest.ErrTestRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeLabTestRepo) List(_ context.Context, q *labtest.ListQuery) ([]*labtest.TestRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*labtest.TestRequest
	for _, r := range f.requests {
		if q.PatientID != nil && r.PatientID != *q.PatientID {
			continue
		}
		if q.RequestedBy != nil && r.RequestedBy != *q.RequestedBy {
			continue
		}
		if q.Status != nil && r.Status != *q.Status {
			continue
		}
		cp := *r
		matched = append(matched, &cp)
	}
	return matched, nil
}

func (f *fakeLabTestRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeReportRepo struct {
	mu      sync.Mutex
	tests   *fakeLabTestRepo
	reports map[uuid.UUID]*report.Report
}

func newFakeReportRepo(tests *fakeLabTestRepo) *fakeReportRepo {
	return &fakeReportRepo{tests: tests, reports: make(map[uuid.UUID]*report.Report)}
}

func (f *fakeReportRepo) CreateForTest(_ context.Context, r *report.Report, testRequestID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if testRequestID != nil {
		f.tests.mu.Lock()
		tr, ok := f.tests.requests[*testRequestID]
		if !ok {
			f.tests.mu.Unlock()
			return labtest.ErrTestRequestNotFound
		}
		if tr.ResultID != nil {
			f.tests.mu.Unlock()
			return labtest.ErrAlreadyResolved
		}
		r.ID = uuid.New()
		tr.ResultID = &r.ID
		tr.Status = labtest.StatusCompleted
		f.tests.mu.Unlock()
	} else {
		r.ID = uuid.New()
	}

	cp := *r
	f.reports[r.ID] = &cp
	return nil
}

func (f *fakeReportRepo) GetByID(_ context.Context, id uuid.UUID) (*report.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return nil, report.ErrReportNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReportRepo) UpdateStatus(_ context.Context, id uuid.UUID, status report.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok {
		return report.ErrReportNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeReportRepo) List(_ context.Context, q *report.ListQuery) ([]*report.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*report.Report
	for _, r := range f.reports {
		if q.PatientID != nil && r.PatientID != *q.PatientID {
			continue
		}
		if q.DoctorID != nil && r.DoctorID != *q.DoctorID {
			continue
		}
		if q.Status != nil && r.Status != *q.Status {
			continue
		}
		cp := *r
		matched = append(matched, &cp)
	}
	return matched, nil
}

type fakePrescriptionRepo struct {
	mu            sync.Mutex
	prescriptions map[uuid.UUID]*prescription.Prescription
}

func newFakePrescriptionRepo() *fakePrescriptionRepo {
	return &fakePrescriptionRepo{prescriptions: make(map[uuid.UUID]*prescription.Prescription)}
}

func (f *fakePrescriptionRepo) CreateWithMedications(_ context.Context, p *prescription.Prescription, specs []prescription.MedicationSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p.ID = uuid.New()
	for i, spec := range specs {
		med := prescription.Medication{
			ID:             uuid.New(),
			PrescriptionID: p.ID,
			Position:       i,
			Dosage:         spec.Dosage,
			Frequency:      spec.Frequency,
			Instructions:   spec.Instructions,
			Duration:       spec.Duration,
			Medicine: &prescription.Medicine{
				ID:   uuid.New(),
				Name: spec.Name,
			},
		}
		p.Medications = append(p.Medications, med)
	}

	cp := *p
	f.prescriptions[p.ID] = &cp
	return nil
}

func (f *fakePrescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prescriptions[id]
	if !ok {
		return nil, prescription.ErrPrescriptionNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePrescriptionRepo) UpdateStatus(_ context.Context, id uuid.UUID, status prescription.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prescriptions[id]
	if !ok {
		return prescription.ErrPrescriptionNotFound
	}
	p.Status = status
	return nil
}

func (f *fakePrescriptionRepo) List(_ context.Context, q *prescription.ListQuery) ([]*prescription.Prescription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*prescription.Prescription
	for _, p := range f.prescriptions {
		if q.PatientID != nil && p.PatientID != *q.PatientID {
			continue
		}
		if q.DoctorID != nil && p.DoctorID != *q.DoctorID {
			continue
		}
		if q.Status != nil && p.Status != *q.Status {
			continue
		}
		cp := *p
		matched = append(matched, &cp)
	}
	return matched, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (f *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}
