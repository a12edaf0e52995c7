package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
)

const roomNumberConstraint = "rooms_room_number_key"

type Repository interface {
	Create(ctx context.Context, r *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)
	ListAvailable(ctx context.Context, filter AvailableFilter) ([]*Room, error)
	Update(ctx context.Context, r *Room) error
	Delete(ctx context.Context, id string) error
	CountActiveBookings(ctx context.Context, id string) (checkedIn, confirmed int, err error)
	SetMaintenance(ctx context.Context, id string, enabled bool) (*Room, error)
}

type pgxRepository struct {
	pool       *pgxpool.Pool
	maxRetries int
}

func NewPgxRepository(pool *pgxpool.Pool, maxRetries int) Repository {
	return &pgxRepository{pool: pool, maxRetries: maxRetries}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var roomColumns = []string{
	"r.id", "r.category_id", "r.room_number", "r.floor", "r.status", "r.description", "r.size_sqm",
	"r.created_at", "r.updated_at", "c.name", "c.base_price", "c.max_guests", "c.is_active",
}

func selectRooms(extra ...string) squirrel.SelectBuilder {
	return psql.Select(append(roomColumns, extra...)...).
		From("public.rooms r").
		Join("public.room_categories c ON c.id = r.category_id")
}

func scanRoom(row pgx.Row, extra ...any) (*Room, error) {
	var r Room
	var status string
	dest := []any{
		&r.ID, &r.CategoryID, &r.RoomNumber, &r.Floor, &status, &r.Description, &r.SizeSqm,
		&r.CreatedAt, &r.UpdatedAt, &r.CategoryName, &r.BasePrice, &r.MaxGuests, &r.CategoryActive,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	r.Status = Status(status)
	return &r, nil
}

// GetForUpdate loads a room and locks its row until q's transaction ends.
func GetForUpdate(ctx context.Context, q db.Querier, id string) (*Room, error) {
	return getRoom(ctx, q, id, "FOR UPDATE OF r")
}

// Get loads a room without taking any lock.
func Get(ctx context.Context, q db.Querier, id string) (*Room, error) {
	return getRoom(ctx, q, id, "")
}

func getRoom(ctx context.Context, q db.Querier, id, lock string) (*Room, error) {
	queryBuilder := selectRooms().Where(squirrel.Eq{"r.id": id})
	if lock != "" {
		queryBuilder = queryBuilder.Suffix(lock)
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get room query failed: %w", err)
	}

	r, err := scanRoom(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return r, nil
}

// CountActiveBookings returns how many checked-in and confirmed bookings the room has.
func CountActiveBookings(ctx context.Context, q db.Querier, id string) (checkedIn, confirmed int, err error) {
	query, args, err := psql.Select(
		"count(*) FILTER (WHERE status = 'checked_in')",
		"count(*) FILTER (WHERE status = 'confirmed')",
	).
		From("public.bookings").
		Where(squirrel.Eq{"room_id": id}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build count active bookings query failed: %w", err)
	}

	if err := q.QueryRow(ctx, query, args...).Scan(&checkedIn, &confirmed); err != nil {
		return 0, 0, fmt.Errorf("count active bookings failed: %w", err)
	}
	return checkedIn, confirmed, nil
}

// SetStatus writes the cached room status.
func SetStatus(ctx context.Context, q db.Querier, id string, status Status) error {
	query, args, err := psql.Update("public.rooms").
		Set("status", string(status)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room status query failed: %w", err)
	}

	ct, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update room status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Create(ctx context.Context, room *Room) error {
	query, args, err := psql.Insert("public.rooms").
		Columns("category_id", "room_number", "floor", "status", "description", "size_sqm").
		Values(room.CategoryID, room.RoomNumber, room.Floor, string(StatusAvailable), room.Description, room.SizeSqm).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create room query failed: %w", err)
	}

	room.Status = StatusAvailable
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt); err != nil {
		switch {
		case db.IsUniqueViolation(err, roomNumberConstraint):
			return ErrDuplicateNumber
		case db.IsForeignKeyViolation(err):
			return ErrInvalidCategory
		}
		return fmt.Errorf("create room failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	query, args, err := selectRooms().Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get room query failed: %w", err)
	}

	room, err := scanRoom(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room failed: %w", err)
	}
	return room, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	queryBuilder := selectRooms("count(*) OVER() AS total_count")

	if filter.CategoryID != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"r.category_id": filter.CategoryID})
	}
	if filter.Status != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"r.status": string(filter.Status)})
	}
	if filter.Floor != nil {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"r.floor": *filter.Floor})
	}
	if filter.Keyword != "" {
		queryBuilder = queryBuilder.Where(squirrel.ILike{"r.room_number": "%" + filter.Keyword + "%"})
	}

	// Sorting
	orderBy := "r.room_number"
	if filter.SortBy != "" {
		orderBy = "r." + filter.SortBy
	}

	orderDir := "ASC"
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
		return nil, 0, fmt.Errorf("build list rooms query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms failed: %w", err)
	}
	defer rows.Close()

	var result []*Room
	var total int

	for rows.Next() {
		room, err := scanRoom(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan room failed: %w", err)
		}
		result = append(result, room)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list rooms failed: %w", err)
	}

	return result, total, nil
}

// ListAvailable returns rooms that are not under maintenance, belong to an
// active category and have no active booking touching [CheckIn, CheckOut].
// The date test is the same closed-interval overlap the booking checker uses.
func (r *pgxRepository) ListAvailable(ctx context.Context, filter AvailableFilter) ([]*Room, error) {
	queryBuilder := selectRooms().
		Where(squirrel.NotEq{"r.status": string(StatusMaintenance)}).
		Where(squirrel.Eq{"c.is_active": true}).
		Where(`NOT EXISTS (
			SELECT 1 FROM public.bookings b
			WHERE b.room_id = r.id
			  AND b.status IN ('confirmed', 'checked_in')
			  AND b.check_in_date <= ?
			  AND ? <= b.check_out_date
		)`, filter.CheckOut, filter.CheckIn)

	if filter.CategoryID != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"r.category_id": filter.CategoryID})
	}
	if filter.Guests > 0 {
		queryBuilder = queryBuilder.Where(squirrel.GtOrEq{"c.max_guests": filter.Guests})
	}

	sql, args, err := queryBuilder.OrderBy("c.base_price ASC", "r.room_number ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list available rooms query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list available rooms failed: %w", err)
	}
	defer rows.Close()

	var result []*Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room failed: %w", err)
		}
		result = append(result, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list available rooms failed: %w", err)
	}
	return result, nil
}

// Update writes the descriptive attributes. Status is left alone; it only
// changes through booking transitions and SetMaintenance.
func (r *pgxRepository) Update(ctx context.Context, room *Room) error {
	query, args, err := psql.Update("public.rooms").
		Set("category_id", room.CategoryID).
		Set("room_number", room.RoomNumber).
		Set("floor", room.Floor).
		Set("description", room.Description).
		Set("size_sqm", room.SizeSqm).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": room.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&room.UpdatedAt); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return ErrNotFound
		case db.IsUniqueViolation(err, roomNumberConstraint):
			return ErrDuplicateNumber
		case db.IsForeignKeyViolation(err):
			return ErrInvalidCategory
		}
		return fmt.Errorf("update room failed: %w", err)
	}
	return nil
}

// Delete removes a room inside a transaction that first locks it, so a
// booking cannot be created for it between the check and the delete.
func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	return db.WithTx(ctx, r.pool, db.SerializableTx, r.maxRetries, func(tx pgx.Tx) error {
		if _, err := GetForUpdate(ctx, tx, id); err != nil {
			return err
		}

		checkedIn, confirmed, err := CountActiveBookings(ctx, tx, id)
		if err != nil {
			return err
		}
		if checkedIn+confirmed > 0 {
			return ErrHasActiveBookings
		}

		query, args, err := psql.Delete("public.rooms").Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete room query failed: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrHasBookingHistory
			}
			return fmt.Errorf("delete room failed: %w", err)
		}
		return nil
	})
}

func (r *pgxRepository) CountActiveBookings(ctx context.Context, id string) (int, int, error) {
	return CountActiveBookings(ctx, r.pool, id)
}

// SetMaintenance puts the room under maintenance or lifts it. Lifting it
// re-derives the status from the room's active bookings. An occupied room
// cannot be put under maintenance.
func (r *pgxRepository) SetMaintenance(ctx context.Context, id string, enabled bool) (*Room, error) {
	var room *Room
	err := db.WithTx(ctx, r.pool, db.SerializableTx, r.maxRetries, func(tx pgx.Tx) error {
		var err error
		room, err = GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		checkedIn, confirmed, err := CountActiveBookings(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err := MaintenanceStatus(enabled, checkedIn, confirmed)
		if err != nil {
			return err
		}

		if err := SetStatus(ctx, tx, id, next); err != nil {
			return err
		}
		room.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}
