package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"barangay_portal_backend/internal/appointments/repository"
	"barangay_portal_backend/internal/appointments/slots"
	"barangay_portal_backend/internal/events"
	identityrepo "barangay_portal_backend/internal/identity/repository"
	identityservice "barangay_portal_backend/internal/identity/service"
	"barangay_portal_backend/internal/notification"
	"barangay_portal_backend/internal/tracking"
	"barangay_portal_backend/platform/apperr"
	"barangay_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// fakes

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*identityrepo.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*identityrepo.User{}}
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*identityrepo.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[strings.ToLower(email)]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identityrepo.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUserRepo) CreateOrGet(_ context.Context, params identityrepo.CreateUserParams) (*identityrepo.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email := strings.ToLower(params.Email)
	if existing, ok := f.users[email]; ok {
		clone := *existing
		return &clone, nil
	}
	u := &identityrepo.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Phone:     params.Phone,
		Role:      params.Role,
		CreatedAt: time.Now(),
	}
	f.users[email] = u
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) SetPassword(context.Context, uuid.UUID, string) error { return nil }

func (f *fakeUserRepo) CountByRole(context.Context, string) (int, error) { return 0, nil }

// fakeApptRepo enforces the per-slot capacity check under a mutex, the same
// guarantee the production repository provides with an advisory lock.
type fakeApptRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*repository.Appointment
}

func newFakeApptRepo() *fakeApptRepo {
	return &fakeApptRepo{appointments: map[uuid.UUID]*repository.Appointment{}}
}

func (f *fakeApptRepo) slotKey(date time.Time, serviceType, timeSlot string) string {
	return fmt.Sprintf("%s|%s|%s", date.Format("2006-01-02"), serviceType, timeSlot)
}

func (f *fakeApptRepo) BookSlot(_ context.Context, params repository.BookParams) (*repository.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := f.slotKey(params.Date, params.ServiceType, params.Time)
	count := 0
	for _, a := range f.appointments {
		if a.TrackingID == params.TrackingID {
			return nil, repository.ErrDuplicateTrackingID
		}
		if a.Status != repository.StatusCancelled && f.slotKey(a.Date, a.ServiceType, a.Time) == key {
			count++
		}
	}
	if count >= slots.MaxPerSlot {
		return nil, apperr.SlotFull(fmt.Sprintf("slot %s on %s is fully booked", params.Time, params.Date.Format("2006-01-02")))
	}

	appt := &repository.Appointment{
		ID:            uuid.New(),
		TrackingID:    params.TrackingID,
		UserID:        params.UserID,
		ServiceType:   params.ServiceType,
		Date:          params.Date,
		Time:          params.Time,
		HealthConcern: params.HealthConcern,
		Status:        repository.StatusPending,
		CreatedAt:     time.Now(),
	}
	f.appointments[appt.ID] = appt
	clone := *appt
	return &clone, nil
}

func (f *fakeApptRepo) CountNonCancelled(_ context.Context, date time.Time, serviceType, timeSlot string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.slotKey(date, serviceType, timeSlot)
	count := 0
	for _, a := range f.appointments {
		if a.Status != repository.StatusCancelled && f.slotKey(a.Date, a.ServiceType, a.Time) == key {
			count++
		}
	}
	return count, nil
}

func (f *fakeApptRepo) BookedCounts(_ context.Context, date time.Time, serviceType string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	day := date.Format("2006-01-02")
	counts := map[string]int{}
	for _, a := range f.appointments {
		if a.Status != repository.StatusCancelled && a.ServiceType == serviceType && a.Date.Format("2006-01-02") == day {
			counts[a.Time]++
		}
	}
	return counts, nil
}

func (f *fakeApptRepo) FindByID(_ context.Context, id uuid.UUID) (*repository.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return nil, apperr.NotFound("appointment not found")
	}
	clone := *a
	return &clone, nil
}

func (f *fakeApptRepo) FindByTrackingID(_ context.Context, trackingID string) (*repository.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appointments {
		if a.TrackingID == trackingID {
			clone := *a
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("appointment not found")
}

func (f *fakeApptRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, remarks *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return apperr.NotFound("appointment not found")
	}
	a.Status = status
	a.Remarks = remarks
	return nil
}

func (f *fakeApptRepo) List(_ context.Context, filters repository.ListFilters) ([]repository.Appointment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]repository.Appointment, 0, len(f.appointments))
	for _, a := range f.appointments {
		if filters.UserID != uuid.Nil && a.UserID != filters.UserID {
			continue
		}
		items = append(items, *a)
	}
	return items, len(items), nil
}

func (f *fakeApptRepo) CountByStatus(context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []notification.Notification
	fail bool
}

func (f *fakeDispatcher) Dispatch(_ context.Context, n notification.Notification) error {
	if f.fail {
		return fmt.Errorf("dispatch failed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return nil
}

type testEnv struct {
	svc        *Service
	apptRepo   *fakeApptRepo
	userRepo   *fakeUserRepo
	dispatcher *fakeDispatcher
}

func newTestEnv() *testEnv {
	log := logger.New("development")
	userRepo := newFakeUserRepo()
	apptRepo := newFakeApptRepo()
	dispatcher := &fakeDispatcher{}

	svc := New(
		apptRepo,
		identityservice.New(userRepo, log),
		tracking.NewGenerator(),
		dispatcher,
		events.NewInMemoryBus(log),
		log,
	)

	return &testEnv{
		svc:        svc,
		apptRepo:   apptRepo,
		userRepo:   userRepo,
		dispatcher: dispatcher,
	}
}

func bookParams() BookParams {
	return BookParams{
		FullName:    "Maria Santos",
		Email:       "maria@example.com",
		ServiceType: "General Checkup",
		Date:        time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		Time:        "09:00:00",
	}
}

// ---------------------------------------------------------------------------
// tests

func TestBookCreatesPendingAppointment(t *testing.T) {
	env := newTestEnv()

	result, err := env.svc.Book(context.Background(), bookParams())
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}

	appt := result.Appointment
	if appt.Status != repository.StatusPending {
		t.Fatalf("new booking status = %q, want pending", appt.Status)
	}
	if !strings.HasPrefix(appt.TrackingID, "APPT-") {
		t.Fatalf("tracking id %q does not use the APPT prefix", appt.TrackingID)
	}
	if !result.NotificationQueued {
		t.Fatal("expected the received notification to be queued")
	}
	if len(env.dispatcher.sent) != 1 || env.dispatcher.sent[0].Kind != notification.KindAppointmentReceived {
		t.Fatalf("expected one received notification, got %+v", env.dispatcher.sent)
	}
}

func TestBookForUserResolvesOwnerFromStore(t *testing.T) {
	env := newTestEnv()

	user, err := env.userRepo.CreateOrGet(context.Background(), identityrepo.CreateUserParams{
		Email:     "jose@example.com",
		FirstName: "Jose",
		LastName:  "Ramos",
		Role:      "resident",
	})
	if err != nil {
		t.Fatalf("seed user returned error: %v", err)
	}

	params := bookParams()
	params.FullName = ""
	params.Email = ""
	result, err := env.svc.BookForUser(context.Background(), user.ID, params)
	if err != nil {
		t.Fatalf("BookForUser returned error: %v", err)
	}

	if result.Appointment.UserID != user.ID {
		t.Fatal("booking must belong to the authenticated user")
	}
	if result.Appointment.ResidentEmail != "jose@example.com" {
		t.Fatalf("resident email = %q, want the stored address", result.Appointment.ResidentEmail)
	}
	if len(env.dispatcher.sent) != 1 || env.dispatcher.sent[0].RecipientEmail != "jose@example.com" {
		t.Fatalf("expected the notification addressed to the stored user, got %+v", env.dispatcher.sent)
	}
}

func TestBookForUserUnknownUser(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.BookForUser(context.Background(), uuid.New(), bookParams())
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not-found kind, got %v", apperr.GetKind(err))
	}
}

func TestListForUserScopesToOwner(t *testing.T) {
	env := newTestEnv()

	mine, err := env.svc.Book(context.Background(), bookParams())
	if err != nil {
		t.Fatalf("first Book returned error: %v", err)
	}
	other := bookParams()
	other.Email = "pedro@example.com"
	other.FullName = "Pedro Reyes"
	other.Time = "09:30:00"
	if _, err := env.svc.Book(context.Background(), other); err != nil {
		t.Fatalf("second Book returned error: %v", err)
	}

	items, total, err := env.svc.ListForUser(context.Background(), mine.Appointment.UserID, 20, 0)
	if err != nil {
		t.Fatalf("ListForUser returned error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected exactly the owner's booking, got %d items (total %d)", len(items), total)
	}
	if items[0].UserID != mine.Appointment.UserID {
		t.Fatal("listing leaked another resident's booking")
	}
}

func TestBookRejectsTimeOutsideCatalogue(t *testing.T) {
	env := newTestEnv()

	for _, slot := range []string{"08:00:00", "17:00:00", "09:15:00", "not-a-time"} {
		params := bookParams()
		params.Time = slot
		if _, err := env.svc.Book(context.Background(), params); apperr.GetKind(err) != apperr.KindValidation {
			t.Fatalf("Book with time %q: got %v, want validation error", slot, err)
		}
	}
}

func TestBookRejectsFullSlot(t *testing.T) {
	env := newTestEnv()

	for i := 0; i < slots.MaxPerSlot; i++ {
		params := bookParams()
		params.Email = fmt.Sprintf("resident%d@example.com", i)
		if _, err := env.svc.Book(context.Background(), params); err != nil {
			t.Fatalf("booking %d returned error: %v", i, err)
		}
	}

	params := bookParams()
	params.Email = "late@example.com"
	_, err := env.svc.Book(context.Background(), params)
	if apperr.GetKind(err) != apperr.KindSlotFull {
		t.Fatalf("overbooking: got %v, want slot full error", err)
	}
}

func TestConcurrentBookersRespectCapacity(t *testing.T) {
	env := newTestEnv()

	// Two existing bookings leave room for exactly one more.
	for i := 0; i < slots.MaxPerSlot-1; i++ {
		params := bookParams()
		params.Email = fmt.Sprintf("early%d@example.com", i)
		if _, err := env.svc.Book(context.Background(), params); err != nil {
			t.Fatalf("seed booking %d returned error: %v", i, err)
		}
	}

	const bookers = 10
	results := make(chan error, bookers)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < bookers; i++ {
		go func(i int) {
			start.Wait()
			params := bookParams()
			params.Email = fmt.Sprintf("racer%d@example.com", i)
			_, err := env.svc.Book(context.Background(), params)
			results <- err
		}(i)
	}
	start.Done()

	succeeded, full := 0, 0
	for i := 0; i < bookers; i++ {
		err := <-results
		switch {
		case err == nil:
			succeeded++
		case apperr.GetKind(err) == apperr.KindSlotFull:
			full++
		default:
			t.Fatalf("unexpected booking error: %v", err)
		}
	}

	if succeeded != 1 || full != bookers-1 {
		t.Fatalf("got %d successes and %d slot-full rejections, want 1 and %d", succeeded, full, bookers-1)
	}
	if count, _ := env.apptRepo.CountNonCancelled(context.Background(), bookParams().Date, bookParams().ServiceType, bookParams().Time); count != slots.MaxPerSlot {
		t.Fatalf("slot holds %d bookings, want %d", count, slots.MaxPerSlot)
	}
}

func TestAvailableSlotsEmptyDay(t *testing.T) {
	env := newTestEnv()

	available, err := env.svc.AvailableSlots(context.Background(), bookParams().Date, "General Checkup")
	if err != nil {
		t.Fatalf("AvailableSlots returned error: %v", err)
	}

	if len(available) != 16 {
		t.Fatalf("empty day offers %d slots, want 16", len(available))
	}
	if available[0] != "09:00:00" || available[len(available)-1] != "16:30:00" {
		t.Fatalf("slot range = %s..%s, want 09:00:00..16:30:00", available[0], available[len(available)-1])
	}
	for i := 1; i < len(available); i++ {
		if available[i] <= available[i-1] {
			t.Fatalf("slots not ascending: %q after %q", available[i], available[i-1])
		}
	}
}

func TestAvailableSlotsOmitsFullSlot(t *testing.T) {
	env := newTestEnv()

	for i := 0; i < slots.MaxPerSlot; i++ {
		params := bookParams()
		params.Email = fmt.Sprintf("resident%d@example.com", i)
		if _, err := env.svc.Book(context.Background(), params); err != nil {
			t.Fatalf("booking %d returned error: %v", i, err)
		}
	}

	available, err := env.svc.AvailableSlots(context.Background(), bookParams().Date, bookParams().ServiceType)
	if err != nil {
		t.Fatalf("AvailableSlots returned error: %v", err)
	}
	if len(available) != 15 {
		t.Fatalf("day with one full slot offers %d slots, want 15", len(available))
	}
	for _, slot := range available {
		if slot == bookParams().Time {
			t.Fatalf("full slot %s still offered", slot)
		}
	}
}

func TestCancelledBookingFreesCapacity(t *testing.T) {
	env := newTestEnv()

	var lastID uuid.UUID
	for i := 0; i < slots.MaxPerSlot; i++ {
		params := bookParams()
		params.Email = fmt.Sprintf("resident%d@example.com", i)
		result, err := env.svc.Book(context.Background(), params)
		if err != nil {
			t.Fatalf("booking %d returned error: %v", i, err)
		}
		lastID = result.Appointment.ID
	}

	if _, err := env.svc.Cancel(context.Background(), lastID, "resident asked to cancel"); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}

	params := bookParams()
	params.Email = "next@example.com"
	if _, err := env.svc.Book(context.Background(), params); err != nil {
		t.Fatalf("booking after cancellation returned error: %v", err)
	}
}

func TestConfirmNotifiesResident(t *testing.T) {
	env := newTestEnv()

	booked, err := env.svc.Book(context.Background(), bookParams())
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	env.dispatcher.sent = nil

	result, err := env.svc.Confirm(context.Background(), booked.Appointment.ID)
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}

	if result.Appointment.Status != repository.StatusConfirmed {
		t.Fatalf("status = %q, want confirmed", result.Appointment.Status)
	}
	if result.Appointment.Remarks == nil || *result.Appointment.Remarks != "Appointment confirmed" {
		t.Fatalf("remarks = %v, want the default confirmation remarks", result.Appointment.Remarks)
	}
	if len(env.dispatcher.sent) != 1 || env.dispatcher.sent[0].Kind != notification.KindAppointmentConfirmed {
		t.Fatalf("expected one confirmed notification, got %+v", env.dispatcher.sent)
	}
}

func TestConfirmSurvivesDispatchFailure(t *testing.T) {
	env := newTestEnv()

	booked, err := env.svc.Book(context.Background(), bookParams())
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}

	env.dispatcher.fail = true
	result, err := env.svc.Confirm(context.Background(), booked.Appointment.ID)
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if result.NotificationQueued {
		t.Fatal("expected NotificationQueued=false when dispatch fails")
	}
	if result.Appointment.Status != repository.StatusConfirmed {
		t.Fatalf("status = %q, want confirmed despite dispatch failure", result.Appointment.Status)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv()

	booked, err := env.svc.Book(context.Background(), bookParams())
	if err != nil {
		t.Fatalf("Book returned error: %v", err)
	}

	if _, err := env.svc.UpdateStatus(context.Background(), booked.Appointment.ID, "done", nil); apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("UpdateStatus with unknown status: got %v, want validation error", err)
	}
}

func TestTrackUnknownID(t *testing.T) {
	env := newTestEnv()

	if _, err := env.svc.Track(context.Background(), "APPT-20260101-0000"); apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("Track unknown id: got %v, want not found", err)
	}
}
