package sweets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const sweetColumns = `id, name, category, price_cents, quantity, created_at, updated_at`

// Querier is the slice of pgxpool.Pool the repo uses.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repo struct{ DB Querier }

func scanSweet(row pgx.Row) (Sweet, error) {
	var s Sweet
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.PriceCents, &s.Quantity, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *Repo) Create(ctx context.Context, name, category string, priceCents, quantity int) (Sweet, error) {
	if name == "" {
		return Sweet{}, fmt.Errorf("name is required")
	}
	if priceCents < 0 || quantity < 0 {
		return Sweet{}, fmt.Errorf("price and quantity must be non-negative")
	}
	id := uuid.NewString()
	s, err := scanSweet(r.DB.QueryRow(ctx, `
		INSERT INTO sweets(id, name, category, price_cents, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+sweetColumns,
		id, name, category, priceCents, quantity))
	if isUniqueViolation(err) {
		return Sweet{}, ErrNameTaken
	}
	if err != nil {
		return Sweet{}, err
	}
	return s, nil
}

func (r *Repo) Get(ctx context.Context, id string) (Sweet, error) {
	s, err := scanSweet(r.DB.QueryRow(ctx, `SELECT `+sweetColumns+` FROM sweets WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Sweet{}, ErrNotFound
	}
	if err != nil {
		return Sweet{}, err
	}
	return s, nil
}

func (r *Repo) List(ctx context.Context) ([]Sweet, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+sweetColumns+` FROM sweets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// searchSQL builds the filtered listing query. Name matches as a
// case-insensitive substring, category exact, price range inclusive.
func searchSQL(f SearchFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Name != "" {
		add(`name ILIKE '%%' || $%d || '%%'`, f.Name)
	}
	if f.Category != "" {
		add(`category = $%d`, f.Category)
	}
	if f.MinPriceCents != nil {
		add(`price_cents >= $%d`, *f.MinPriceCents)
	}
	if f.MaxPriceCents != nil {
		add(`price_cents <= $%d`, *f.MaxPriceCents)
	}
	q := `SELECT ` + sweetColumns + ` FROM sweets`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	q += ` ORDER BY name`
	return q, args
}

func (r *Repo) Search(ctx context.Context, f SearchFilter) ([]Sweet, error) {
	q, args := searchSQL(f)
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Sweet, error) {
	var out []Sweet
	for rows.Next() {
		var s Sweet
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.PriceCents, &s.Quantity, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update applies a partial admin edit in a single statement: unset fields
// COALESCE to their current value in the database, so an untouched quantity
// is never rewritten from a stale read while a purchase races it. A rename
// re-checks name uniqueness through the same unique index as Create.
func (r *Repo) Update(ctx context.Context, id string, in UpdateInput) (Sweet, error) {
	if in.PriceCents != nil && *in.PriceCents < 0 {
		return Sweet{}, fmt.Errorf("price must be non-negative")
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return Sweet{}, fmt.Errorf("quantity must be non-negative")
	}

	s, err := scanSweet(r.DB.QueryRow(ctx, `
		UPDATE sweets
		SET name        = COALESCE($2, name),
		    category    = COALESCE($3, category),
		    price_cents = COALESCE($4, price_cents),
		    quantity    = COALESCE($5, quantity),
		    updated_at  = now()
		WHERE id=$1
		RETURNING `+sweetColumns,
		id, in.Name, in.Category, in.PriceCents, in.Quantity))
	if isUniqueViolation(err) {
		return Sweet{}, ErrNameTaken
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return Sweet{}, ErrNotFound
	}
	if err != nil {
		return Sweet{}, err
	}
	return s, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM sweets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
