package roomcategory

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context, filter Filter) ([]*Category, int, error)
	Update(ctx context.Context, c *Category) error
	UpdateImage(ctx context.Context, id string, imagePath, thumbnailPath *string) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var categoryColumns = []string{
	"c.id", "c.name", "c.description", "c.base_price", "c.max_guests", "c.amenities",
	"c.image_path", "c.thumbnail_path", "c.is_active", "c.created_at", "c.updated_at",
	"(SELECT count(*) FROM public.rooms r WHERE r.category_id = c.id) AS room_count",
}

func scanCategory(row pgx.Row, extra ...any) (*Category, error) {
	var c Category
	dest := []any{
		&c.ID, &c.Name, &c.Description, &c.BasePrice, &c.MaxGuests, &c.Amenities,
		&c.ImagePath, &c.ThumbnailPath, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.RoomCount,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if c.Amenities == nil {
		c.Amenities = []string{}
	}
	return &c, nil
}

func (r *pgxRepository) Create(ctx context.Context, c *Category) error {
	if c.Amenities == nil {
		c.Amenities = []string{}
	}
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.room_categories").
		Columns("name", "description", "base_price", "max_guests", "amenities", "is_active").
		Values(c.Name, c.Description, c.BasePrice, c.MaxGuests, c.Amenities, c.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create room category query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("create room category failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Category, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(categoryColumns...).
		From("public.room_categories c").
		Where(squirrel.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get room category query failed: %w", err)
	}

	c, err := scanCategory(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get room category failed: %w", err)
	}
	return c, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Category, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	queryBuilder := psql.Select(append(categoryColumns, "count(*) OVER() AS total_count")...).
		From("public.room_categories c")

	if filter.ActiveOnly {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"c.is_active": true})
	}
	if filter.Keyword != "" {
		queryBuilder = queryBuilder.Where(squirrel.ILike{"c.name": "%" + filter.Keyword + "%"})
	}
	if filter.MinPrice != nil {
		queryBuilder = queryBuilder.Where(squirrel.GtOrEq{"c.base_price": *filter.MinPrice})
	}
	if filter.MaxPrice != nil {
		queryBuilder = queryBuilder.Where(squirrel.LtOrEq{"c.base_price": *filter.MaxPrice})
	}

	// Sorting
	orderBy := "c.created_at"
	if filter.SortBy != "" {
		orderBy = "c." + filter.SortBy
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
		return nil, 0, fmt.Errorf("build list room categories query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list room categories failed: %w", err)
	}
	defer rows.Close()

	var result []*Category
	var total int

	for rows.Next() {
		c, err := scanCategory(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan room category failed: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list room categories failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, c *Category) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.room_categories").
		Set("name", c.Name).
		Set("description", c.Description).
		Set("base_price", c.BasePrice).
		Set("max_guests", c.MaxGuests).
		Set("amenities", c.Amenities).
		Set("is_active", c.IsActive).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": c.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room category query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update room category failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) UpdateImage(ctx context.Context, id string, imagePath, thumbnailPath *string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.room_categories").
		Set("image_path", imagePath).
		Set("thumbnail_path", thumbnailPath).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update room category image query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update room category image failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.room_categories").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete room category query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return fmt.Errorf("delete room category failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
