// Package refdata resolves free-text publisher names and grade abbreviations
// into foreign-key identifiers. Publishers are created lazily on first
// reference; grades are a closed, seeded set and are never created here.
package refdata

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/michaelk046/ComicManager/apperror"
)

// Querier is the minimal query surface the resolver needs. It is satisfied
// by *pgxpool.Pool and by pgx.Tx, so callers can resolve inside the same
// transaction that writes the item.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ResolvePublisher maps a free-text publisher name to a publisher id,
// inserting a new row for an unseen name. Matching is case-insensitive on
// the trimmed name. A nil or blank name resolves to nil.
//
// Concurrent first-use of the same name is settled by the unique index on
// lower(name): the insert uses ON CONFLICT DO NOTHING, and when another
// writer wins the race the winner's row is read back.
func ResolvePublisher(ctx context.Context, q Querier, name *string) (*int, error) {
	if name == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil, nil
	}

	var id int
	err := q.QueryRow(ctx,
		`SELECT id FROM publisher WHERE lower(name) = lower($1)`,
		trimmed).Scan(&id)
	if err == nil {
		return &id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewDatabaseError("failed to look up publisher", err)
	}

	err = q.QueryRow(ctx,
		`INSERT INTO publisher (name)
		 VALUES ($1)
		 ON CONFLICT ((lower(name))) DO NOTHING
		 RETURNING id`,
		trimmed).Scan(&id)
	if err == nil {
		return &id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewDatabaseError("failed to create publisher", err)
	}

	// No row back from the insert means someone else created it between our
	// lookup and insert. Reread and reuse their row.
	err = q.QueryRow(ctx,
		`SELECT id FROM publisher WHERE lower(name) = lower($1)`,
		trimmed).Scan(&id)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to look up publisher", err)
	}
	return &id, nil
}

// ResolveGrade maps a grade abbreviation to its id. A nil or blank
// abbreviation resolves to nil; an abbreviation outside the seeded set is a
// hard error. Grade rows are never created.
func ResolveGrade(ctx context.Context, q Querier, abbreviation *string) (*int, error) {
	if abbreviation == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*abbreviation)
	if trimmed == "" {
		return nil, nil
	}

	var id int
	err := q.QueryRow(ctx,
		`SELECT id FROM grade WHERE abbreviation = $1`,
		trimmed).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewUnknownGradeError(trimmed)
		}
		return nil, apperror.NewDatabaseError("failed to look up grade", err)
	}
	return &id, nil
}
