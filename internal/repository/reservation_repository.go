package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Luca-HyeongRok/Reservation-Management-API/internal/model"
)

// ReservationRepo provides persistence for reservations on top of MySQL.
// All timestamp columns are stored and compared in UTC; the DSN must set
// parseTime=true&loc=UTC so DATETIME values scan into time.Time directly.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repository methods run against whichever the context carries, so the
// same method works standalone and inside WithTx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

// WithTx runs fn inside a transaction. The transaction travels in the
// context, so repository calls made by fn join it automatically. fn
// returning an error rolls back; otherwise the transaction commits.
// Nested calls reuse the outer transaction.
func (r *ReservationRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *ReservationRepo) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return r.db
}

// ListFilter narrows List results. Zero values mean "no constraint":
// an empty Statuses slice matches every status, nil bounds leave the
// reserved_at range open, and Limit <= 0 disables paging. Both time
// bounds are inclusive.
type ListFilter struct {
	Statuses []model.ReservationStatus
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

const reservationColumns = `id, reservation_number, customer_name, customer_phone, customer_email,
	       reserved_at, party_size, status, cancel_reason, created_at, updated_at, version`

// scanReservation reads one row into a model.Reservation. It accepts
// either *sql.Row or *sql.Rows through the shared Scan signature.
func scanReservation(row interface{ Scan(dest ...interface{}) error }, res *model.Reservation) error {
	var (
		email  sql.NullString
		reason sql.NullString
		status string
	)
	if err := row.Scan(
		&res.ID, &res.ReservationNumber, &res.CustomerName, &res.CustomerPhone, &email,
		&res.ReservedAt, &res.PartySize, &status, &reason, &res.CreatedAt, &res.UpdatedAt, &res.Version,
	); err != nil {
		return err
	}
	res.Status = model.ReservationStatus(status)
	res.CustomerEmail = nil
	if email.Valid {
		e := email.String
		res.CustomerEmail = &e
	}
	res.CancelReason = nil
	if reason.Valid {
		cr := reason.String
		res.CancelReason = &cr
	}
	res.ReservedAt = res.ReservedAt.UTC()
	res.CreatedAt = res.CreatedAt.UTC()
	res.UpdatedAt = res.UpdatedAt.UTC()
	return nil
}

// mapDuplicateErr translates MySQL duplicate-entry failures (error 1062)
// into the repository sentinel for whichever unique key collided. Other
// errors pass through unchanged.
func mapDuplicateErr(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "1062") {
		return err
	}
	switch {
	case strings.Contains(msg, "uniq_reservation_number"):
		return ErrDuplicateReservationNumber
	case strings.Contains(msg, "uniq_active_reserved_at"):
		return ErrDuplicateActiveSlot
	}
	return err
}

// Create inserts a new reservation and populates the generated ID and
// version on the provided record. A collision on the active-slot key
// returns ErrDuplicateActiveSlot; a collision on the reservation number
// returns ErrDuplicateReservationNumber so the caller can retry with a
// fresh number.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (reservation_number, customer_name, customer_phone, customer_email, reserved_at,
	            party_size, status, cancel_reason, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.q(ctx).ExecContext(ctx, q,
		res.ReservationNumber, res.CustomerName, res.CustomerPhone, res.CustomerEmail, res.ReservedAt.UTC(),
		res.PartySize, string(res.Status), res.CancelReason, res.CreatedAt.UTC(), res.UpdatedAt.UTC(),
	)
	if err != nil {
		return mapDuplicateErr(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the full row to populate defaults such as version.
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return scanReservation(r.q(ctx).QueryRowContext(ctx, sel, res.ID), res)
}

// GetByID returns the reservation with the given ID, or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	var res model.Reservation
	if err := scanReservation(r.q(ctx).QueryRowContext(ctx, q, id), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// GetByNumber returns the reservation with the given public reservation
// number, or ErrNotFound.
func (r *ReservationRepo) GetByNumber(ctx context.Context, number string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_number = ?`
	var res model.Reservation
	if err := scanReservation(r.q(ctx).QueryRowContext(ctx, q, number), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}

// List returns reservations matching the filter ordered by ID ascending,
// which is creation order. When nothing matches, an empty slice is
// returned rather than nil.
func (r *ReservationRepo) List(ctx context.Context, f ListFilter) ([]model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	conds := make([]string, 0, 3)
	args := make([]interface{}, 0, 6)
	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		conds = append(conds, "status IN ("+strings.Join(placeholders, ",")+")")
	}
	if f.From != nil {
		conds = append(conds, "reserved_at >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		conds = append(conds, "reserved_at <= ?")
		args = append(args, f.To.UTC())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}
	rows, err := r.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ExistsActiveAt reports whether any active reservation already holds
// the given reserved_at instant. The unique key on active_reserved_at
// remains the authoritative guard; this check exists so concurrent-free
// duplicates fail before the insert is attempted.
func (r *ReservationRepo) ExistsActiveAt(ctx context.Context, at time.Time) (bool, error) {
	placeholders := make([]string, len(model.ActiveStatuses))
	args := make([]interface{}, 0, len(model.ActiveStatuses)+1)
	args = append(args, at.UTC())
	for i, s := range model.ActiveStatuses {
		placeholders[i] = "?"
		args = append(args, string(s))
	}
	query := `SELECT EXISTS(SELECT 1 FROM reservations WHERE reserved_at = ? AND status IN (` +
		strings.Join(placeholders, ",") + `))`
	var exists bool
	if err := r.q(ctx).QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Update persists the mutable fields of a reservation guarded by its
// version. When the stored version no longer matches, no row is updated
// and ErrVersionMismatch is returned. On success the version column is
// bumped and the record is refreshed from the row.
func (r *ReservationRepo) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations
	           SET customer_name = ?, customer_phone = ?, customer_email = ?, reserved_at = ?,
	               party_size = ?, status = ?, cancel_reason = ?, updated_at = ?, version = version + 1
	           WHERE id = ? AND version = ?`
	result, err := r.q(ctx).ExecContext(ctx, q,
		res.CustomerName, res.CustomerPhone, res.CustomerEmail, res.ReservedAt.UTC(),
		res.PartySize, string(res.Status), res.CancelReason, res.UpdatedAt.UTC(),
		res.ID, res.Version,
	)
	if err != nil {
		return mapDuplicateErr(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVersionMismatch
	}
	const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return scanReservation(r.q(ctx).QueryRowContext(ctx, sel, res.ID), res)
}
