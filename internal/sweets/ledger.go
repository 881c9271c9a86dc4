package sweets

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Ledger owns the authoritative quantity column. Stock only moves through
// the two primitives below; neither is ever a read-then-write pair.
type Ledger struct{ DB Querier }

// DecrementIfAvailable applies quantity -= qty only when quantity >= qty,
// as one conditional UPDATE. Concurrent purchasers serialize on the row, so
// the counter can never go negative. A zero-row result means the condition
// failed; it does not say whether the sweet is missing or just short, so
// callers follow up with Exists.
func (l *Ledger) DecrementIfAvailable(ctx context.Context, id string, qty int) (Sweet, error) {
	if qty <= 0 {
		return Sweet{}, ErrInvalidQuantity
	}
	s, err := scanSweet(l.DB.QueryRow(ctx, `
		UPDATE sweets
		SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity >= $2
		RETURNING `+sweetColumns,
		id, qty))
	if errors.Is(err, pgx.ErrNoRows) {
		return Sweet{}, ErrConditionNotMet
	}
	if err != nil {
		return Sweet{}, err
	}
	return s, nil
}

// Increment applies quantity += qty unconditionally for an existing sweet.
func (l *Ledger) Increment(ctx context.Context, id string, qty int) (Sweet, error) {
	if qty <= 0 {
		return Sweet{}, ErrInvalidQuantity
	}
	s, err := scanSweet(l.DB.QueryRow(ctx, `
		UPDATE sweets
		SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING `+sweetColumns,
		id, qty))
	if errors.Is(err, pgx.ErrNoRows) {
		return Sweet{}, ErrNotFound
	}
	if err != nil {
		return Sweet{}, err
	}
	return s, nil
}

// Exists is the secondary probe that classifies a failed decrement.
func (l *Ledger) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := l.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sweets WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}
