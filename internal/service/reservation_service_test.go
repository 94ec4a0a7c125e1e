package service

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/clock"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/model"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/queue"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/repository"
)

// fakeRepo is an in-memory ReservationRepository. It mimics the real
// storage semantics: unique reservation numbers, one active reservation
// per instant, and version-guarded updates.
type fakeRepo struct {
	mu          sync.Mutex
	seq         uint64
	rows        map[uint64]model.Reservation
	createErrs  []error // queued, popped one per Create call
	updateErr   error   // sticky, returned by every Update
	numbers     []string
	existsCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[uint64]model.Reservation{}}
}

func copyRes(r model.Reservation) model.Reservation {
	if r.CustomerEmail != nil {
		e := *r.CustomerEmail
		r.CustomerEmail = &e
	}
	if r.CancelReason != nil {
		cr := *r.CancelReason
		r.CancelReason = &cr
	}
	return r
}

// add seeds a row directly, bypassing service validation.
func (f *fakeRepo) add(r model.Reservation) model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	r.ID = f.seq
	if r.Version == 0 {
		r.Version = 1
	}
	f.rows[r.ID] = copyRes(r)
	return r
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeRepo) Create(ctx context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.numbers = append(f.numbers, res.ReservationNumber)
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		return err
	}
	for _, r := range f.rows {
		if r.ReservationNumber == res.ReservationNumber {
			return repository.ErrDuplicateReservationNumber
		}
		if r.Status.IsActive() && r.ReservedAt.Equal(res.ReservedAt) {
			return repository.ErrDuplicateActiveSlot
		}
	}
	f.seq++
	res.ID = f.seq
	res.Version = 1
	f.rows[res.ID] = copyRes(*res)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyRes(r)
	return &out, nil
}

func (f *fakeRepo) GetByNumber(ctx context.Context, number string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ReservationNumber == number {
			out := copyRes(r)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepo) List(ctx context.Context, filter repository.ListFilter) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, r := range f.rows {
		if len(filter.Statuses) > 0 {
			match := false
			for _, s := range filter.Statuses {
				if r.Status == s {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		if filter.From != nil && r.ReservedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && r.ReservedAt.After(*filter.To) {
			continue
		}
		out = append(out, copyRes(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []model.Reservation{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeRepo) ExistsActiveAt(ctx context.Context, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++
	for _, r := range f.rows {
		if r.Status.IsActive() && r.ReservedAt.Equal(at) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Update(ctx context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	cur, ok := f.rows[res.ID]
	if !ok || cur.Version != res.Version {
		return repository.ErrVersionMismatch
	}
	res.Version++
	f.rows[res.ID] = copyRes(*res)
	return nil
}

type publishedEvent struct {
	queueName string
	event     queue.ReservationEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []publishedEvent
}

func (p *fakePublisher) Publish(ctx context.Context, queueName string, event queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{queueName: queueName, event: event})
	return nil
}

var testNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestService() (*ReservationService, *fakeRepo, *fakePublisher) {
	repo := newFakeRepo()
	pub := &fakePublisher{}
	return NewReservationService(repo, clock.NewFixed(testNow), pub), repo, pub
}

func intPtr(n int) *int { return &n }

var numberPattern = regexp.MustCompile(`^RSV-[0-9A-F]{12}$`)

func TestCreateReservation(t *testing.T) {
	svc, _, pub := newTestService()

	res, err := svc.Create(context.Background(), &CreateReservationRequest{
		CustomerName: "  Hong Gil-dong  ",
		ReservedAt:   "2030-06-15T18:30:00",
		PartySize:    intPtr(4),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.ID == 0 {
		t.Error("ID not assigned")
	}
	if res.CustomerName != "Hong Gil-dong" {
		t.Errorf("CustomerName = %q, want trimmed name", res.CustomerName)
	}
	if res.CustomerPhone != model.UnknownCustomerPhone {
		t.Errorf("CustomerPhone = %q, want %q", res.CustomerPhone, model.UnknownCustomerPhone)
	}
	if res.CustomerEmail != nil {
		t.Errorf("CustomerEmail = %v, want nil", *res.CustomerEmail)
	}
	if res.Status != model.StatusRequested {
		t.Errorf("Status = %s, want %s", res.Status, model.StatusRequested)
	}
	if res.CancelReason != nil {
		t.Errorf("CancelReason = %v, want nil", *res.CancelReason)
	}
	want := time.Date(2030, 6, 15, 18, 30, 0, 0, time.UTC)
	if !res.ReservedAt.Equal(want) {
		t.Errorf("ReservedAt = %v, want %v", res.ReservedAt, want)
	}
	if res.PartySize != 4 {
		t.Errorf("PartySize = %d, want 4", res.PartySize)
	}
	if !numberPattern.MatchString(res.ReservationNumber) {
		t.Errorf("ReservationNumber %q does not match %v", res.ReservationNumber, numberPattern)
	}
	if res.Version != 1 {
		t.Errorf("Version = %d, want 1", res.Version)
	}
	if !res.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want clock time %v", res.CreatedAt, testNow)
	}
	if !res.UpdatedAt.Equal(res.CreatedAt) {
		t.Errorf("UpdatedAt = %v, want CreatedAt %v", res.UpdatedAt, res.CreatedAt)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	ev := pub.events[0]
	if ev.queueName != queue.ReservationCreatedQueue {
		t.Errorf("event queue = %q, want %q", ev.queueName, queue.ReservationCreatedQueue)
	}
	if ev.event.ReservationID != res.ID || ev.event.ReservationNumber != res.ReservationNumber {
		t.Errorf("event identity mismatch: %+v", ev.event)
	}
	if ev.event.Status != string(model.StatusRequested) {
		t.Errorf("event status = %q", ev.event.Status)
	}
	if ev.event.ReservedAt != "2030-06-15T18:30:00" {
		t.Errorf("event reserved_at = %q", ev.event.ReservedAt)
	}
	if ev.event.CancelReason != "" {
		t.Errorf("event cancel_reason = %q, want empty", ev.event.CancelReason)
	}
	if ev.event.OccurredAt != testNow.Format(time.RFC3339) {
		t.Errorf("event occurred_at = %q", ev.event.OccurredAt)
	}
}

func TestCreateValidationOrder(t *testing.T) {
	// Violations are checked in a fixed order; each request below breaks
	// several rules, and the reported error must be the earliest one.
	tests := []struct {
		name    string
		req     *CreateReservationRequest
		wantErr error
	}{
		{"nil request", nil, model.ErrRequestRequired},
		{"blank name wins over everything", &CreateReservationRequest{CustomerName: "   ", ReservedAt: "garbage"}, model.ErrCustomerNameRequired},
		{"blank time wins over party size", &CreateReservationRequest{CustomerName: "Kim"}, model.ErrReservedAtRequired},
		{"party size wins over malformed time", &CreateReservationRequest{CustomerName: "Kim", ReservedAt: "garbage"}, model.ErrPartySizeTooSmall},
		{"party size zero", &CreateReservationRequest{CustomerName: "Kim", ReservedAt: "2030-06-15T18:30:00", PartySize: intPtr(0)}, model.ErrPartySizeTooSmall},
		{"party size negative", &CreateReservationRequest{CustomerName: "Kim", ReservedAt: "2030-06-15T18:30:00", PartySize: intPtr(-2)}, model.ErrPartySizeTooSmall},
		{"malformed time", &CreateReservationRequest{CustomerName: "Kim", ReservedAt: "15/06/2030 18:30", PartySize: intPtr(2)}, model.ErrMalformedReservedAt},
		{"time with offset", &CreateReservationRequest{CustomerName: "Kim", ReservedAt: "2030-06-15T18:30:00+09:00", PartySize: intPtr(2)}, model.ErrMalformedReservedAt},
		{"past time", &CreateReservationRequest{CustomerName: "Kim", ReservedAt: "2029-12-31T23:59:59", PartySize: intPtr(2)}, model.ErrReservedAtNotFuture},
		{"exactly now", &CreateReservationRequest{CustomerName: "Kim", ReservedAt: "2030-01-01T12:00:00", PartySize: intPtr(2)}, model.ErrReservedAtNotFuture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, pub := newTestService()
			_, err := svc.Create(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create error = %v, want %v", err, tt.wantErr)
			}
			if len(repo.rows) != 0 {
				t.Errorf("storage touched by rejected request")
			}
			if repo.existsCalls != 0 {
				t.Errorf("slot check ran for rejected request")
			}
			if len(pub.events) != 0 {
				t.Errorf("event published for rejected request")
			}
		})
	}
}

// stepClock returns a later instant on every reading.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func TestCreateRechecksFutureBeforeStorage(t *testing.T) {
	// The reservation time sits one hour past the first clock reading,
	// so validation passes. The clock then jumps ahead, and the check
	// repeated at the start of the transaction must reject before any
	// storage work happens.
	repo := newFakeRepo()
	clk := &stepClock{now: testNow, step: 2 * time.Hour}
	svc := NewReservationService(repo, clk, nil)

	_, err := svc.Create(context.Background(), &CreateReservationRequest{
		CustomerName: "Kim", ReservedAt: "2030-01-01T13:00:00", PartySize: intPtr(2),
	})
	if !errors.Is(err, model.ErrReservedAtNotFuture) {
		t.Fatalf("Create error = %v, want ErrReservedAtNotFuture", err)
	}
	if repo.existsCalls != 0 {
		t.Error("slot check ran after the future check failed")
	}
	if len(repo.rows) != 0 {
		t.Error("row inserted after the future check failed")
	}
}

func TestCreateDuplicateSlot(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, &CreateReservationRequest{
		CustomerName: "Kim", ReservedAt: "2030-06-15T18:30:00", PartySize: intPtr(2),
	})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err = svc.Create(ctx, &CreateReservationRequest{
		CustomerName: "Lee", ReservedAt: "2030-06-15T18:30:00", PartySize: intPtr(5),
	})
	if !errors.Is(err, model.ErrDuplicateActiveSlot) {
		t.Fatalf("second create error = %v, want ErrDuplicateActiveSlot", err)
	}
	if len(repo.rows) != 1 {
		t.Errorf("rows = %d, want 1", len(repo.rows))
	}
	if len(pub.events) != 1 {
		t.Errorf("events = %d, want 1", len(pub.events))
	}

	// A canceled reservation releases its slot.
	if _, err := svc.Cancel(ctx, first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Create(ctx, &CreateReservationRequest{
		CustomerName: "Lee", ReservedAt: "2030-06-15T18:30:00", PartySize: intPtr(5),
	}); err != nil {
		t.Fatalf("create after cancel: %v", err)
	}
}

func TestCreateRetriesNumberCollision(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.createErrs = []error{repository.ErrDuplicateReservationNumber}

	res, err := svc.Create(context.Background(), &CreateReservationRequest{
		CustomerName: "Kim", ReservedAt: "2030-06-15T18:30:00", PartySize: intPtr(2),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(repo.numbers) != 2 {
		t.Fatalf("insert attempts = %d, want 2", len(repo.numbers))
	}
	if repo.numbers[0] == repo.numbers[1] {
		t.Error("retry reused the colliding number")
	}
	if res.ReservationNumber != repo.numbers[1] {
		t.Errorf("stored number %q is not the retried one %q", res.ReservationNumber, repo.numbers[1])
	}
}

func TestCreateNumberCollisionExhausted(t *testing.T) {
	svc, repo, pub := newTestService()
	repo.createErrs = []error{
		repository.ErrDuplicateReservationNumber,
		repository.ErrDuplicateReservationNumber,
		repository.ErrDuplicateReservationNumber,
	}
	_, err := svc.Create(context.Background(), &CreateReservationRequest{
		CustomerName: "Kim", ReservedAt: "2030-06-15T18:30:00", PartySize: intPtr(2),
	})
	if err == nil {
		t.Fatal("Create succeeded after exhausting number attempts")
	}
	if len(repo.numbers) != maxNumberAttempts {
		t.Errorf("insert attempts = %d, want %d", len(repo.numbers), maxNumberAttempts)
	}
	if len(pub.events) != 0 {
		t.Errorf("event published for failed create")
	}
}

func TestCancelReservation(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	res, err := svc.Create(ctx, &CreateReservationRequest{
		CustomerName: "Kim", ReservedAt: "2030-06-15T18:30:00", PartySize: intPtr(2),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Cancel through a service whose clock has moved on, sharing the
	// repository, so the timestamps can be told apart.
	cancelTime := testNow.Add(time.Hour)
	later := NewReservationService(repo, clock.NewFixed(cancelTime), pub)
	canceled, err := later.Cancel(ctx, res.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != model.StatusCanceled {
		t.Errorf("Status = %s, want %s", canceled.Status, model.StatusCanceled)
	}
	if canceled.CancelReason == nil || *canceled.CancelReason != model.DefaultCancelReason {
		t.Errorf("CancelReason = %v, want default", canceled.CancelReason)
	}
	if canceled.Version != res.Version+1 {
		t.Errorf("Version = %d, want %d", canceled.Version, res.Version+1)
	}
	if !canceled.CreatedAt.Equal(res.CreatedAt) {
		t.Errorf("CreatedAt changed on cancel: %v", canceled.CreatedAt)
	}
	if !canceled.UpdatedAt.Equal(cancelTime) {
		t.Errorf("UpdatedAt = %v, want %v", canceled.UpdatedAt, cancelTime)
	}
	if !canceled.UpdatedAt.After(canceled.CreatedAt) {
		t.Errorf("UpdatedAt %v not after CreatedAt %v", canceled.UpdatedAt, canceled.CreatedAt)
	}

	if len(pub.events) != 2 {
		t.Fatalf("events = %d, want 2", len(pub.events))
	}
	ev := pub.events[1]
	if ev.queueName != queue.ReservationCanceledQueue {
		t.Errorf("event queue = %q", ev.queueName)
	}
	if ev.event.Status != string(model.StatusCanceled) {
		t.Errorf("event status = %q", ev.event.Status)
	}
	if ev.event.CancelReason != model.DefaultCancelReason {
		t.Errorf("event cancel_reason = %q", ev.event.CancelReason)
	}
}

func TestCancelGuards(t *testing.T) {
	tests := []struct {
		name    string
		status  model.ReservationStatus
		wantErr error
	}{
		{"requested cancels", model.StatusRequested, nil},
		{"confirmed cancels", model.StatusConfirmed, nil},
		{"canceled is final", model.StatusCanceled, model.ErrAlreadyFinalized},
		{"completed is final", model.StatusCompleted, model.ErrAlreadyFinalized},
		{"no-show is final", model.StatusNoShow, model.ErrAlreadyFinalized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService()
			seeded := repo.add(model.Reservation{
				ReservationNumber: "RSV-AAAAAAAAAAAA",
				CustomerName:      "Kim",
				CustomerPhone:     model.UnknownCustomerPhone,
				ReservedAt:        time.Date(2030, 6, 15, 18, 30, 0, 0, time.UTC),
				PartySize:         2,
				Status:            tt.status,
			})
			_, err := svc.Cancel(context.Background(), seeded.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Cancel error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCancelNotFound(t *testing.T) {
	svc, _, pub := newTestService()
	_, err := svc.Cancel(context.Background(), 404)
	if !errors.Is(err, model.ErrReservationNotFound) {
		t.Fatalf("Cancel error = %v, want ErrReservationNotFound", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("event published for failed cancel")
	}
}

func TestCancelConcurrentUpdate(t *testing.T) {
	svc, repo, pub := newTestService()
	seeded := repo.add(model.Reservation{
		ReservationNumber: "RSV-BBBBBBBBBBBB",
		CustomerName:      "Kim",
		CustomerPhone:     model.UnknownCustomerPhone,
		ReservedAt:        time.Date(2030, 6, 15, 18, 30, 0, 0, time.UTC),
		PartySize:         2,
		Status:            model.StatusRequested,
	})
	repo.updateErr = repository.ErrVersionMismatch

	_, err := svc.Cancel(context.Background(), seeded.ID)
	if !errors.Is(err, model.ErrConcurrentUpdate) {
		t.Fatalf("Cancel error = %v, want ErrConcurrentUpdate", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("event published for failed cancel")
	}
}

func TestGetByIDAndNumber(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	seeded := repo.add(model.Reservation{
		ReservationNumber: "RSV-0123456789AB",
		CustomerName:      "Kim",
		CustomerPhone:     model.UnknownCustomerPhone,
		ReservedAt:        time.Date(2030, 6, 15, 18, 30, 0, 0, time.UTC),
		PartySize:         2,
		Status:            model.StatusRequested,
	})

	got, err := svc.Get(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ReservationNumber != seeded.ReservationNumber {
		t.Errorf("Get returned %q", got.ReservationNumber)
	}

	byNum, err := svc.GetByNumber(ctx, " RSV-0123456789AB ")
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if byNum.ID != seeded.ID {
		t.Errorf("GetByNumber returned id %d", byNum.ID)
	}

	if _, err := svc.Get(ctx, 999); !errors.Is(err, model.ErrReservationNotFound) {
		t.Errorf("Get(999) error = %v", err)
	}
	if _, err := svc.GetByNumber(ctx, "RSV-FFFFFFFFFFFF"); !errors.Is(err, model.ErrReservationNotFound) {
		t.Errorf("GetByNumber(unknown) error = %v", err)
	}
	if _, err := svc.GetByNumber(ctx, "   "); !errors.Is(err, model.ErrReservationNotFound) {
		t.Errorf("GetByNumber(blank) error = %v", err)
	}
}

func TestListFilters(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	at := func(day, hour int) time.Time {
		return time.Date(2030, 6, day, hour, 0, 0, 0, time.UTC)
	}
	seed := []struct {
		number string
		status model.ReservationStatus
		when   time.Time
	}{
		{"RSV-000000000001", model.StatusRequested, at(10, 18)},
		{"RSV-000000000002", model.StatusConfirmed, at(11, 18)},
		{"RSV-000000000003", model.StatusCanceled, at(12, 18)},
		{"RSV-000000000004", model.StatusRequested, at(13, 18)},
		{"RSV-000000000005", model.StatusCompleted, at(14, 18)},
	}
	for _, s := range seed {
		repo.add(model.Reservation{
			ReservationNumber: s.number,
			CustomerName:      "Kim",
			CustomerPhone:     model.UnknownCustomerPhone,
			ReservedAt:        s.when,
			PartySize:         2,
			Status:            s.status,
		})
	}

	numbers := func(list []model.Reservation) []string {
		out := make([]string, len(list))
		for i, r := range list {
			out[i] = r.ReservationNumber
		}
		return out
	}

	all, err := svc.List(ctx, ListReservationsRequest{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("List returned %d rows, want 5", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("List not ordered by id: %v", numbers(all))
		}
	}

	requested, err := svc.List(ctx, ListReservationsRequest{Statuses: []string{"REQUESTED"}})
	if err != nil {
		t.Fatalf("List by status: %v", err)
	}
	if got := numbers(requested); len(got) != 2 || got[0] != "RSV-000000000001" || got[1] != "RSV-000000000004" {
		t.Errorf("List by status = %v", got)
	}

	multi, err := svc.List(ctx, ListReservationsRequest{Statuses: []string{"CANCELED", "COMPLETED"}})
	if err != nil {
		t.Fatalf("List by statuses: %v", err)
	}
	if len(multi) != 2 {
		t.Errorf("List by two statuses = %v", numbers(multi))
	}

	// Range bounds are inclusive on both ends.
	ranged, err := svc.List(ctx, ListReservationsRequest{
		From: "2030-06-11T18:00:00",
		To:   "2030-06-13T18:00:00",
	})
	if err != nil {
		t.Fatalf("List by range: %v", err)
	}
	if got := numbers(ranged); len(got) != 3 || got[0] != "RSV-000000000002" || got[2] != "RSV-000000000004" {
		t.Errorf("List by range = %v", got)
	}

	paged, err := svc.List(ctx, ListReservationsRequest{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("List paged: %v", err)
	}
	if got := numbers(paged); len(got) != 2 || got[0] != "RSV-000000000002" || got[1] != "RSV-000000000003" {
		t.Errorf("List paged = %v", got)
	}

	if _, err := svc.List(ctx, ListReservationsRequest{Statuses: []string{"BOGUS"}}); !errors.Is(err, model.ErrUnknownStatus) {
		t.Errorf("List with unknown status error = %v", err)
	}
	if _, err := svc.List(ctx, ListReservationsRequest{From: "garbage"}); !errors.Is(err, model.ErrMalformedReservedAt) {
		t.Errorf("List with malformed from error = %v", err)
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	svc, _, pub := newTestService()
	pub.err = errors.New("broker down")

	res, err := svc.Create(context.Background(), &CreateReservationRequest{
		CustomerName: "Kim", ReservedAt: "2030-06-15T18:30:00", PartySize: intPtr(2),
	})
	if err != nil {
		t.Fatalf("Create failed because publishing failed: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), res.ID); err != nil {
		t.Fatalf("Cancel failed because publishing failed: %v", err)
	}
}

func TestNilPublisher(t *testing.T) {
	repo := newFakeRepo()
	svc := NewReservationService(repo, clock.NewFixed(testNow), nil)

	res, err := svc.Create(context.Background(), &CreateReservationRequest{
		CustomerName: "Kim", ReservedAt: "2030-06-15T18:30:00", PartySize: intPtr(2),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), res.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
}

func TestNewReservationNumberFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := newReservationNumber()
		if !numberPattern.MatchString(n) {
			t.Fatalf("number %q does not match %v", n, numberPattern)
		}
		if !strings.HasPrefix(n, "RSV-") || len(n) != 16 {
			t.Fatalf("number %q has wrong shape", n)
		}
		if seen[n] {
			t.Fatalf("number %q generated twice in 100 draws", n)
		}
		seen[n] = true
	}
}
