package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

const (
	codeConstraint    = "bookings_booking_code_key"
	overlapConstraint = "bookings_no_overlap"
)

// errCodeTaken means a concurrent transaction committed the same booking code
// between our CodeExists check and the insert.
var errCodeTaken = errors.New("booking code taken concurrently")

// Store is the transactional view the lifecycle works against. Every method
// runs inside the transaction opened by Repository.WithTx.
type Store interface {
	// GetRoom loads the room and locks it for the rest of the transaction.
	GetRoom(ctx context.Context, roomID string) (*room.Room, error)
	// GetBooking loads the booking and locks it for the rest of the transaction.
	GetBooking(ctx context.Context, id string) (*Booking, error)
	FindConflictingBookings(ctx context.Context, roomID string, checkIn, checkOut time.Time, statuses []Status) ([]*Booking, error)
	InsertBooking(ctx context.Context, b *Booking) error
	UpdateBooking(ctx context.Context, b *Booking) error
	CountActiveBookings(ctx context.Context, roomID string) (checkedIn, confirmed int, err error)
	UpdateRoomStatus(ctx context.Context, roomID string, status room.Status) error
	CodeExists(ctx context.Context, code string) (bool, error)
}

type Repository interface {
	// WithTx runs fn in one serializable transaction. fn may be invoked more
	// than once when the database reports a serialization conflict.
	WithTx(ctx context.Context, fn func(Store) error) error

	GetByID(ctx context.Context, id string) (*Booking, error)
	GetByCode(ctx context.Context, code string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// PeekRoom and FindActiveBookings read committed state without locking.
	// They back availability queries, which must not contend with writers.
	PeekRoom(ctx context.Context, roomID string) (*room.Room, error)
	FindActiveBookings(ctx context.Context, roomID string, checkIn, checkOut time.Time) ([]*Booking, error)
}

type pgxRepository struct {
	pool       *pgxpool.Pool
	maxRetries int
}

func NewPgxRepository(pool *pgxpool.Pool, maxRetries int) Repository {
	return &pgxRepository{pool: pool, maxRetries: maxRetries}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var bookingColumns = []string{
	"b.id", "b.booking_code", "b.user_id", "b.room_id", "b.check_in_date", "b.check_out_date",
	"b.num_guests", "b.total_nights", "b.price_per_night", "b.total_price", "b.status",
	"b.special_requests", "b.checked_in_at", "b.checked_out_at", "b.cancelled_at",
	"b.cancellation_reason", "b.created_at", "b.updated_at",
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	var status string
	dest := []any{
		&b.ID, &b.Code, &b.UserID, &b.RoomID, &b.CheckIn, &b.CheckOut,
		&b.NumGuests, &b.Nights, &b.PricePerNight, &b.TotalPrice, &status,
		&b.SpecialRequests, &b.CheckedInAt, &b.CheckedOutAt, &b.CancelledAt,
		&b.CancellationReason, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	b.Status = Status(status)
	return &b, nil
}

// selectDetailed joins the room number, category name and guest email.
func selectDetailed(extra ...string) squirrel.SelectBuilder {
	cols := append(append([]string{}, bookingColumns...), "r.room_number", "c.name", "u.email")
	return psql.Select(append(cols, extra...)...).
		From("public.bookings b").
		Join("public.rooms r ON r.id = b.room_id").
		Join("public.room_categories c ON c.id = r.category_id").
		Join("public.users u ON u.id = b.user_id")
}

func scanDetailed(row pgx.Row, extra ...any) (*Booking, error) {
	var roomNumber, categoryName, email string
	b, err := scanBooking(row, append([]any{&roomNumber, &categoryName, &email}, extra...)...)
	if err != nil {
		return nil, err
	}
	b.RoomNumber = roomNumber
	b.CategoryName = categoryName
	b.GuestEmail = email
	return b, nil
}

func (r *pgxRepository) WithTx(ctx context.Context, fn func(Store) error) error {
	return db.WithTx(ctx, r.pool, db.SerializableTx, r.maxRetries, func(tx pgx.Tx) error {
		return fn(&pgxStore{tx: tx})
	})
}

func (r *pgxRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*Booking, error) {
	query, args, err := selectDetailed().Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanDetailed(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"b.id": id})
}

func (r *pgxRepository) GetByCode(ctx context.Context, code string) (*Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"b.booking_code": code})
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	queryBuilder := selectDetailed("count(*) OVER() AS total_count")

	if filter.UserID != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.RoomID != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"b.room_id": filter.RoomID})
	}
	if filter.Status != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"b.status": string(filter.Status)})
	}
	if filter.From != nil {
		queryBuilder = queryBuilder.Where(squirrel.GtOrEq{"b.check_out_date": *filter.From})
	}
	if filter.To != nil {
		queryBuilder = queryBuilder.Where(squirrel.LtOrEq{"b.check_in_date": *filter.To})
	}

	// Sorting
	orderBy := "b.created_at"
	if filter.SortBy != "" {
		orderBy = "b." + filter.SortBy
	}

	orderDir := "DESC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}

	queryBuilder = queryBuilder.OrderBy(orderBy + " " + orderDir)

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	queryBuilder = queryBuilder.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var result []*Booking
	var total int

	for rows.Next() {
		b, err := scanDetailed(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) PeekRoom(ctx context.Context, roomID string) (*room.Room, error) {
	rm, err := room.Get(ctx, r.pool, roomID)
	if errors.Is(err, room.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	return rm, err
}

func (r *pgxRepository) FindActiveBookings(ctx context.Context, roomID string, checkIn, checkOut time.Time) ([]*Booking, error) {
	return findConflicting(ctx, r.pool, roomID, checkIn, checkOut, ActiveStatuses)
}

type pgxStore struct {
	tx pgx.Tx
}

func (s *pgxStore) GetRoom(ctx context.Context, roomID string) (*room.Room, error) {
	r, err := room.GetForUpdate(ctx, s.tx, roomID)
	if errors.Is(err, room.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	return r, err
}

func (s *pgxStore) GetBooking(ctx context.Context, id string) (*Booking, error) {
	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings b").
		Where(squirrel.Eq{"b.id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(s.tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking for update failed: %w", err)
	}
	return b, nil
}

func (s *pgxStore) FindConflictingBookings(ctx context.Context, roomID string, checkIn, checkOut time.Time, statuses []Status) ([]*Booking, error) {
	return findConflicting(ctx, s.tx, roomID, checkIn, checkOut, statuses)
}

func findConflicting(ctx context.Context, q db.Querier, roomID string, checkIn, checkOut time.Time, statuses []Status) ([]*Booking, error) {
	st := make([]string, len(statuses))
	for i, v := range statuses {
		st[i] = string(v)
	}

	query, args, err := psql.Select(bookingColumns...).
		From("public.bookings b").
		Where(squirrel.Eq{"b.room_id": roomID, "b.status": st}).
		Where(squirrel.LtOrEq{"b.check_in_date": checkOut}).
		Where(squirrel.GtOrEq{"b.check_out_date": checkIn}).
		OrderBy("b.check_in_date").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build conflicting bookings query failed: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find conflicting bookings failed: %w", err)
	}
	defer rows.Close()

	var result []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find conflicting bookings failed: %w", err)
	}
	return result, nil
}

func (s *pgxStore) InsertBooking(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"booking_code", "user_id", "room_id", "check_in_date", "check_out_date", "num_guests",
			"total_nights", "price_per_night", "total_price", "status", "special_requests",
		).
		Values(
			b.Code, b.UserID, b.RoomID, b.CheckIn, b.CheckOut, b.NumGuests,
			b.Nights, b.PricePerNight, b.TotalPrice, string(b.Status), b.SpecialRequests,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert booking query failed: %w", err)
	}

	if err := s.tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		switch {
		case db.IsUniqueViolation(err, codeConstraint):
			return errCodeTaken
		case db.IsExclusionViolation(err, overlapConstraint):
			return ErrRoomUnavailable
		}
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func (s *pgxStore) UpdateBooking(ctx context.Context, b *Booking) error {
	query, args, err := psql.Update("public.bookings").
		Set("status", string(b.Status)).
		Set("checked_in_at", b.CheckedInAt).
		Set("checked_out_at", b.CheckedOutAt).
		Set("cancelled_at", b.CancelledAt).
		Set("cancellation_reason", b.CancellationReason).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := s.tx.QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

func (s *pgxStore) CountActiveBookings(ctx context.Context, roomID string) (int, int, error) {
	return room.CountActiveBookings(ctx, s.tx, roomID)
}

func (s *pgxStore) UpdateRoomStatus(ctx context.Context, roomID string, status room.Status) error {
	err := room.SetStatus(ctx, s.tx, roomID, status)
	if errors.Is(err, room.ErrNotFound) {
		return ErrRoomNotFound
	}
	return err
}

func (s *pgxStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM public.bookings WHERE booking_code = $1)`, code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check booking code failed: %w", err)
	}
	return exists, nil
}
