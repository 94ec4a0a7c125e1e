// Package service implements the reservation lifecycle. It owns request
// validation, the status guards and event publication; persistence
// happens through the ReservationRepository interface so tests can
// substitute an in-memory implementation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/clock"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/model"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/queue"
	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/repository"
)

// maxNumberAttempts bounds regeneration when a fresh reservation number
// collides with an existing row. Twelve hex characters make collisions
// vanishingly rare, so hitting the bound means something is wrong.
const maxNumberAttempts = 3

// ReservationRepository is the persistence surface the service needs.
// *repository.ReservationRepo satisfies it.
type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	GetByNumber(ctx context.Context, number string) (*model.Reservation, error)
	List(ctx context.Context, f repository.ListFilter) ([]model.Reservation, error)
	ExistsActiveAt(ctx context.Context, at time.Time) (bool, error)
	Update(ctx context.Context, res *model.Reservation) error
}

// EventPublisher delivers lifecycle events to the message broker.
// *queue.Publisher satisfies it. Publishing is best-effort; the service
// logs failures and never fails the request over them.
type EventPublisher interface {
	Publish(ctx context.Context, queueName string, event queue.ReservationEvent) error
}

// ReservationService coordinates validation, storage and events for
// reservations.
type ReservationService struct {
	repo   ReservationRepository
	clock  clock.Clock
	events EventPublisher
}

// NewReservationService returns a service backed by the given repository
// and clock. events may be nil, which disables event publishing.
func NewReservationService(repo ReservationRepository, clk clock.Clock, events EventPublisher) *ReservationService {
	return &ReservationService{repo: repo, clock: clk, events: events}
}

// CreateReservationRequest carries the client-supplied fields for a new
// reservation. PartySize is a pointer so an absent field and a present
// zero are both rejected by the same guard.
type CreateReservationRequest struct {
	CustomerName string `json:"customer_name"`
	ReservedAt   string `json:"reserved_at"`
	PartySize    *int   `json:"party_size"`
}

// ListReservationsRequest carries raw list filters as received from the
// client. The service parses and validates them before touching storage.
type ListReservationsRequest struct {
	Statuses []string
	From     string
	To       string
	Limit    int
	Offset   int
}

// createInput is the outcome of a successfully validated creation
// request.
type createInput struct {
	name       string
	reservedAt time.Time
	partySize  int
}

// validateCreate checks a creation request in a fixed order and fails
// on the first violation: request presence, customer name, reservation
// time presence, party size, then timestamp parse and the future
// check. Nothing touches storage until every check has passed.
func (s *ReservationService) validateCreate(req *CreateReservationRequest) (createInput, error) {
	if req == nil {
		return createInput{}, model.ErrRequestRequired
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return createInput{}, model.ErrCustomerNameRequired
	}
	if strings.TrimSpace(req.ReservedAt) == "" {
		return createInput{}, model.ErrReservedAtRequired
	}
	if req.PartySize == nil || *req.PartySize < 1 {
		return createInput{}, model.ErrPartySizeTooSmall
	}
	reservedAt, err := model.ParseReservationTime(req.ReservedAt)
	if err != nil {
		return createInput{}, err
	}
	if !reservedAt.After(s.clock.Now()) {
		return createInput{}, model.ErrReservedAtNotFuture
	}
	return createInput{name: name, reservedAt: reservedAt, partySize: *req.PartySize}, nil
}

// newReservationNumber builds the public reservation code: "RSV-"
// followed by the first twelve hex characters of a random UUID,
// uppercased.
func newReservationNumber() string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "RSV-" + hex[:12]
}

// Create validates the request, checks the slot is free and inserts the
// reservation with status REQUESTED. The slot pre-check and the insert
// share one transaction; the unique key on the active slot still
// backstops races the pre-check cannot see.
func (s *ReservationService) Create(ctx context.Context, req *CreateReservationRequest) (*model.Reservation, error) {
	in, err := s.validateCreate(req)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	res := &model.Reservation{
		CustomerName:  in.name,
		CustomerPhone: model.UnknownCustomerPhone,
		ReservedAt:    in.reservedAt,
		PartySize:     in.partySize,
		Status:        model.StatusRequested,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context) error {
		// The future check repeats here as the first stateful guard.
		// validateCreate already enforced it, but the engine does not
		// assume the gate ran.
		if !in.reservedAt.After(s.clock.Now()) {
			return model.ErrReservedAtNotFuture
		}
		occupied, err := s.repo.ExistsActiveAt(ctx, in.reservedAt)
		if err != nil {
			return fmt.Errorf("check active slot: %w", err)
		}
		if occupied {
			return model.ErrDuplicateActiveSlot
		}
		for attempt := 0; attempt < maxNumberAttempts; attempt++ {
			res.ReservationNumber = newReservationNumber()
			err := s.repo.Create(ctx, res)
			if err == nil {
				return nil
			}
			if errors.Is(err, repository.ErrDuplicateReservationNumber) {
				continue
			}
			if errors.Is(err, repository.ErrDuplicateActiveSlot) {
				return model.ErrDuplicateActiveSlot
			}
			return fmt.Errorf("insert reservation: %w", err)
		}
		return fmt.Errorf("reservation number collided %d times in a row", maxNumberAttempts)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.ReservationCreatedQueue, res)
	return res, nil
}

// Get returns the reservation with the given internal ID.
func (s *ReservationService) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.ErrReservationNotFound
		}
		return nil, fmt.Errorf("load reservation %d: %w", id, err)
	}
	return res, nil
}

// GetByNumber returns the reservation with the given public number.
func (s *ReservationService) GetByNumber(ctx context.Context, number string) (*model.Reservation, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, model.ErrReservationNotFound
	}
	res, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.ErrReservationNotFound
		}
		return nil, fmt.Errorf("load reservation %q: %w", number, err)
	}
	return res, nil
}

// List returns reservations matching the given filters in creation
// order. Unknown statuses and malformed time bounds are rejected before
// any storage access.
func (s *ReservationService) List(ctx context.Context, req ListReservationsRequest) ([]model.Reservation, error) {
	var f repository.ListFilter
	for _, raw := range req.Statuses {
		st, err := model.ParseStatus(strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		f.Statuses = append(f.Statuses, st)
	}
	if strings.TrimSpace(req.From) != "" {
		from, err := model.ParseReservationTime(req.From)
		if err != nil {
			return nil, err
		}
		f.From = &from
	}
	if strings.TrimSpace(req.To) != "" {
		to, err := model.ParseReservationTime(req.To)
		if err != nil {
			return nil, err
		}
		f.To = &to
	}
	if req.Limit > 0 {
		f.Limit = req.Limit
	}
	if req.Offset > 0 {
		f.Offset = req.Offset
	}
	out, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return out, nil
}

// Cancel moves the reservation into CANCELED and records the default
// cancel reason. The terminal guard runs before the active guard so a
// finalized reservation reports "already finalized" rather than the
// generic state error; both guards stay separate even though the
// current status set makes the second unreachable.
func (s *ReservationService) Cancel(ctx context.Context, id uint64) (*model.Reservation, error) {
	var res *model.Reservation
	err := s.repo.WithTx(ctx, func(ctx context.Context) error {
		cur, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return model.ErrReservationNotFound
			}
			return fmt.Errorf("load reservation %d: %w", id, err)
		}
		if cur.Status.IsTerminal() {
			return model.ErrAlreadyFinalized
		}
		if !cur.Status.IsActive() {
			return model.ErrCancelNotAllowed
		}
		reason := model.DefaultCancelReason
		cur.Status = model.StatusCanceled
		cur.CancelReason = &reason
		cur.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, cur); err != nil {
			if errors.Is(err, repository.ErrVersionMismatch) {
				return model.ErrConcurrentUpdate
			}
			return fmt.Errorf("update reservation %d: %w", id, err)
		}
		res = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, queue.ReservationCanceledQueue, res)
	return res, nil
}

// publish sends a lifecycle event when a publisher is configured.
// Failures are logged and swallowed; events never fail the request.
func (s *ReservationService) publish(ctx context.Context, queueName string, res *model.Reservation) {
	if s.events == nil {
		return
	}
	ev := queue.ReservationEvent{
		ReservationID:     res.ID,
		ReservationNumber: res.ReservationNumber,
		CustomerName:      res.CustomerName,
		ReservedAt:        model.FormatReservationTime(res.ReservedAt),
		PartySize:         res.PartySize,
		Status:            string(res.Status),
		OccurredAt:        s.clock.Now().Format(time.RFC3339),
	}
	if res.CancelReason != nil {
		ev.CancelReason = *res.CancelReason
	}
	if err := s.events.Publish(ctx, queueName, ev); err != nil {
		log.Printf("queue: publish %s for reservation %d failed: %v", queueName, res.ID, err)
	}
}
