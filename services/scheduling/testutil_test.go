package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"clinicdesk/database/store"
	"clinicdesk/models"
)

// fakeStore is an in-memory TransactionalStore. ConditionalCreate keeps the
// real claim semantics: first writer wins, everyone else gets
// ErrAlreadyExists.
type fakeStore struct {
	mu       sync.Mutex
	docs     map[string][]byte // collection/id -> json doc
	counters map[string]int    // collection/id/field -> value
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:     make(map[string][]byte),
		counters: make(map[string]int),
	}
}

func docKey(collection, id string) string { return collection + "/" + id }

func (s *fakeStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[docKey(collection, id)]
	if !ok {
		return store.ErrNotFound
	}
	return json.Unmarshal(data, out)
}

func (s *fakeStore) ConditionalCreate(ctx context.Context, collection, id string, doc interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := docKey(collection, id)
	if _, exists := s.docs[key]; exists {
		return store.ErrAlreadyExists
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.docs[key] = data
	return nil
}

func (s *fakeStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := docKey(collection, id)
	data, ok := s.docs[key]
	if !ok {
		return store.ErrNotFound
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	for k, v := range fields {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.docs[key] = merged
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, docKey(collection, id))
	return nil
}

func (s *fakeStore) Increment(ctx context.Context, collection, id, field string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := docKey(collection, id) + "/" + field
	s.counters[key] += delta
	return s.counters[key], nil
}

func (s *fakeStore) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *fakeStore) hasDoc(collection, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[docKey(collection, id)]
	return ok
}

// fakeApptRepo is an in-memory AppointmentRepository backed by the fake
// store for reservations and counters.
type fakeApptRepo struct {
	mu    sync.Mutex
	seq   int
	appts map[string]*models.Appointment
	store store.TransactionalStore
}

func newFakeApptRepo(ts store.TransactionalStore) *fakeApptRepo {
	return &fakeApptRepo{appts: make(map[string]*models.Appointment), store: ts}
}

func (r *fakeApptRepo) Create(ctx context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appt.ID == "" {
		r.seq++
		appt.ID = fmt.Sprintf("appt-%d", r.seq)
	}
	cp := *appt
	r.appts[appt.ID] = &cp
	return nil
}

func (r *fakeApptRepo) GetByID(id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appts[id]
	if !ok {
		return nil, fmt.Errorf("appointment with id %s not found", id)
	}
	cp := *appt
	return &cp, nil
}

func (r *fakeApptRepo) filter(keep func(*models.Appointment) bool) []models.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appts {
		if keep(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotIndex < out[j].SlotIndex })
	return out
}

func (r *fakeApptRepo) ActiveByDay(clinicID, doctorID, date string) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool {
		return a.ClinicID == clinicID && a.DoctorID == doctorID && a.Date == date && a.Active()
	}), nil
}

func (r *fakeApptRepo) ByDay(clinicID, doctorID, date string) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool {
		return a.ClinicID == clinicID && a.DoctorID == doctorID && a.Date == date
	}), nil
}

func (r *fakeApptRepo) BySession(clinicID, doctorID, date string, sessionIndex int) ([]models.Appointment, error) {
	return r.filter(func(a *models.Appointment) bool {
		return a.ClinicID == clinicID && a.DoctorID == doctorID && a.Date == date && a.SessionIndex == sessionIndex
	}), nil
}

func (r *fakeApptRepo) UpdateStatus(id string, from, to models.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appts[id]
	if !ok || appt.Status != from {
		return fmt.Errorf("appointment %s not in status %s", id, from)
	}
	appt.Status = to
	return nil
}

func (r *fakeApptRepo) UpdatePlacement(id string, slotIndex, sessionIndex int, t time.Time, tokenNumber string, numericToken int, status models.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appts[id]
	if !ok {
		return fmt.Errorf("appointment with id %s not found", id)
	}
	appt.SlotIndex = slotIndex
	appt.SessionIndex = sessionIndex
	appt.Time = t
	appt.TokenNumber = tokenNumber
	appt.NumericToken = numericToken
	appt.Status = status
	return nil
}

func (r *fakeApptRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.appts, id)
	return nil
}

func (r *fakeApptRepo) CreateReservation(ctx context.Context, res *models.Reservation) error {
	return r.store.ConditionalCreate(ctx, "reservations", res.ID, res)
}

func (r *fakeApptRepo) DeleteReservation(ctx context.Context, id string) error {
	return r.store.Delete(ctx, "reservations", id)
}

func (r *fakeApptRepo) NextTokenCount(ctx context.Context, counterID string) (int, error) {
	return r.store.Increment(ctx, "token_counters", counterID, "count", 1)
}

func (r *fakeApptRepo) IncrementConsultationCount(clinicID, doctorID, date string, sessionIndex int) (int, error) {
	id := fmt.Sprintf("%s_%s_%s_%d", clinicID, doctorID, date, sessionIndex)
	return r.store.Increment(context.Background(), "consult_counters", id, "count", 1)
}

func (r *fakeApptRepo) ConsultationCount(clinicID, doctorID, date string, sessionIndex int) (int, error) {
	id := fmt.Sprintf("%s_%s_%s_%d", clinicID, doctorID, date, sessionIndex)
	n, err := r.store.Increment(context.Background(), "consult_counters", id, "count", 0)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// fakeNotifier records every published payload.
type fakeNotifier struct {
	mu     sync.Mutex
	events []models.NotificationPayload
}

func (n *fakeNotifier) Publish(ctx context.Context, p models.NotificationPayload) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, p)
	return nil
}

func (n *fakeNotifier) byEvent(event string) []models.NotificationPayload {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []models.NotificationPayload
	for _, p := range n.events {
		if p.Event == event {
			out = append(out, p)
		}
	}
	return out
}

// fakeDoctorRepo serves a fixed set of doctors.
type fakeDoctorRepo struct {
	doctors map[string]*models.Doctor
}

func newFakeDoctorRepo(doctors ...*models.Doctor) *fakeDoctorRepo {
	m := make(map[string]*models.Doctor, len(doctors))
	for _, d := range doctors {
		m[d.ID] = d
	}
	return &fakeDoctorRepo{doctors: m}
}

func (r *fakeDoctorRepo) Create(doctor *models.Doctor) error {
	r.doctors[doctor.ID] = doctor
	return nil
}

func (r *fakeDoctorRepo) GetByID(id string) (*models.Doctor, error) {
	d, ok := r.doctors[id]
	if !ok {
		return nil, fmt.Errorf("doctor with id %s not found", id)
	}
	return d, nil
}

func (r *fakeDoctorRepo) GetAll(clinicID string) ([]models.Doctor, error) {
	var out []models.Doctor
	for _, d := range r.doctors {
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeDoctorRepo) Update(doctor *models.Doctor) error { return nil }
func (r *fakeDoctorRepo) Delete(id string) error             { return nil }
func (r *fakeDoctorRepo) SetAvailability(id string, windows []models.AvailabilityWindow) error {
	return nil
}
func (r *fakeDoctorRepo) AddLeave(id string, leave models.LeaveException) error { return nil }
func (r *fakeDoctorRepo) RemoveLeave(id string, date string) error              { return nil }

// fakePoolRepo is an in-memory WalkInPoolRepository.
type fakePoolRepo struct {
	mu      sync.Mutex
	seq     int
	entries []models.WalkInPoolEntry
}

func (r *fakePoolRepo) Create(entry *models.WalkInPoolEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == "" {
		r.seq++
		entry.ID = fmt.Sprintf("pool-%d", r.seq)
	}
	entry.Status = models.PoolStatusWaiting
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakePoolRepo) ListWaiting(clinicID, doctorID, date string, sessionIndex int) ([]models.WalkInPoolEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WalkInPoolEntry
	for _, e := range r.entries {
		if e.ClinicID == clinicID && e.DoctorID == doctorID && e.Date == date &&
			e.SessionIndex == sessionIndex && e.Status == models.PoolStatusWaiting {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.Before(out[j].RegisteredAt) })
	return out, nil
}

func (r *fakePoolRepo) CountWaiting(clinicID, doctorID, date string, sessionIndex int) (int, error) {
	entries, _ := r.ListWaiting(clinicID, doctorID, date, sessionIndex)
	return len(entries), nil
}

func (r *fakePoolRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakePatientRepo upserts by (clinic, phone).
type fakePatientRepo struct {
	mu       sync.Mutex
	seq      int
	patients map[string]*models.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[string]*models.Patient)}
}

func (r *fakePatientRepo) Upsert(patient *models.Patient) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.patients {
		if p.ClinicID == patient.ClinicID && p.Phone == patient.Phone {
			return p.ID, nil
		}
	}
	r.seq++
	patient.ID = fmt.Sprintf("patient-%d", r.seq)
	cp := *patient
	r.patients[patient.ID] = &cp
	return patient.ID, nil
}

func (r *fakePatientRepo) GetByID(id string) (*models.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient with id %s not found", id)
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatientRepo) AppendVisit(patientID string, visit models.VisitRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[patientID]
	if !ok {
		return fmt.Errorf("patient with id %s not found", patientID)
	}
	p.Visits = append(p.Visits, visit)
	return nil
}

// mondayDoctor is a doctor with a single Monday morning session, 09:00 to
// 12:00 at 15 minutes per slot: a 12-slot grid.
func mondayDoctor() *models.Doctor {
	return &models.Doctor{
		ID:                "doc-1",
		ClinicID:          "clinic-1",
		Name:              "Asha Menon",
		AvgConsultMinutes: 15,
		Availability: []models.AvailabilityWindow{
			{
				Weekday:  time.Monday,
				Sessions: []models.SessionWindow{{From: "09:00", To: "12:00"}},
			},
		},
	}
}

// monday is a fixed Monday used across scheduling tests.
var monday = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.Local)

const mondayDate = "2026-01-05"

func mondayAt(hour, min int) time.Time {
	return time.Date(2026, time.January, 5, hour, min, 0, 0, time.Local)
}

// newTestService wires a scheduling service over the in-memory fakes with a
// pinned clock.
func newTestService(doctor *models.Doctor, now time.Time) (*DefaultSchedulingService, *fakeApptRepo, *fakePoolRepo, *fakeStore) {
	ts := newFakeStore()
	appts := newFakeApptRepo(ts)
	pool := &fakePoolRepo{}
	svc := &DefaultSchedulingService{
		Doctors:      newFakeDoctorRepo(doctor),
		Appointments: appts,
		Pool:         pool,
		Patients:     newFakePatientRepo(),
		Store:        ts,
		Policy:       CapacityPolicy{},
		Now:          func() time.Time { return now },
	}
	return svc, appts, pool, ts
}

func seedAppointment(t interface{ Fatalf(string, ...interface{}) }, appts *fakeApptRepo, doctor *models.Doctor, slot models.Slot, channel models.BookingChannel, status models.AppointmentStatus) *models.Appointment {
	numeric := slot.Index + 1
	token := fmt.Sprintf("A%03d", numeric)
	if channel == models.BookedViaWalkIn {
		numeric = 100 + slot.Index
		token = fmt.Sprintf("%dW", numeric)
	}
	appt := &models.Appointment{
		ClinicID:     doctor.ClinicID,
		DoctorID:     doctor.ID,
		DoctorName:   doctor.Name,
		Date:         mondayDate,
		SlotIndex:    slot.Index,
		SessionIndex: slot.SessionIndex,
		Time:         slot.Time,
		BookedVia:    channel,
		Status:       status,
		TokenNumber:  token,
		NumericToken: numeric,
		PatientID:    fmt.Sprintf("patient-slot-%d", slot.Index),
	}
	if err := appts.Create(context.Background(), appt); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	return appt
}
