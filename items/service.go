package items

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/michaelk046/ComicManager/apperror"
	"github.com/michaelk046/ComicManager/refdata"
)

// DB is the slice of the pgx pool the item service needs. *pgxpool.Pool
// satisfies it, as does pgxmock in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service is the owner-scoped item repository.
type Service interface {
	List(ctx context.Context, ownerID, skip, limit int) ([]Item, error)
	Get(ctx context.Context, ownerID, itemID int) (*Item, error)
	Create(ctx context.Context, ownerID int, req CreateRequest) (*Item, error)
	Update(ctx context.Context, ownerID, itemID int, req UpdateRequest) (*Item, error)
	Delete(ctx context.Context, ownerID, itemID int) (*Item, error)
}

type serviceImpl struct {
	db DB
}

// NewService creates the item service.
func NewService(db DB) Service {
	return &serviceImpl{db: db}
}

const itemColumns = `id, user_id, title, issue_number, publisher_id, grade_id,
	cover_image_url, buy_price, current_value, sell_price, created_at`

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.UserID, &it.Title, &it.IssueNumber,
		&it.PublisherID, &it.GradeID, &it.CoverImageURL,
		&it.BuyPrice, &it.CurrentValue, &it.SellPrice, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// List returns a page of the owner's items, newest first.
func (s *serviceImpl) List(ctx context.Context, ownerID, skip, limit int) ([]Item, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+itemColumns+`
		 FROM comic
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 OFFSET $2 LIMIT $3`,
		ownerID, skip, limit)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list comics", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan comic row", err)
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to iterate comics", err)
	}

	return items, nil
}

// Get returns one of the owner's items. Items belonging to other users are
// indistinguishable from absent ones.
func (s *serviceImpl) Get(ctx context.Context, ownerID, itemID int) (*Item, error) {
	it, err := scanItem(s.db.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM comic WHERE id = $1 AND user_id = $2`,
		itemID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("comic not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load comic", err)
	}
	return it, nil
}

// Create resolves publisher and grade references and persists the new item.
// Everything runs in one transaction: a lazily created publisher commits
// together with the item row or not at all.
func (s *serviceImpl) Create(ctx context.Context, ownerID int, req CreateRequest) (*Item, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	publisherID, err := refdata.ResolvePublisher(ctx, tx, req.Publisher)
	if err != nil {
		return nil, err
	}
	gradeID, err := refdata.ResolveGrade(ctx, tx, req.Grade)
	if err != nil {
		return nil, err
	}

	it, err := scanItem(tx.QueryRow(ctx,
		`INSERT INTO comic (user_id, title, issue_number, publisher_id, grade_id,
		                    cover_image_url, buy_price, current_value, sell_price)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+itemColumns,
		ownerID, req.Title, req.IssueNumber, publisherID, gradeID,
		req.CoverImageURL, req.BuyPrice, req.CurrentValue, req.SellPrice))
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create comic", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewDatabaseError("failed to commit transaction", err)
	}
	return it, nil
}

// Update applies a partial update to one of the owner's items. Fields absent
// from the request keep their current value; explicit nulls clear nullable
// references. Publisher and grade are re-resolved when supplied.
func (s *serviceImpl) Update(ctx context.Context, ownerID, itemID int, req UpdateRequest) (*Item, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	it, err := scanItem(tx.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM comic WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		itemID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("comic not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load comic", err)
	}

	if err := applyUpdate(ctx, tx, it, req); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE comic
		 SET title = $1, issue_number = $2, publisher_id = $3, grade_id = $4,
		     cover_image_url = $5, buy_price = $6, current_value = $7, sell_price = $8
		 WHERE id = $9 AND user_id = $10`,
		it.Title, it.IssueNumber, it.PublisherID, it.GradeID,
		it.CoverImageURL, it.BuyPrice, it.CurrentValue, it.SellPrice,
		it.ID, it.UserID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to update comic", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperror.NewDatabaseError("failed to commit transaction", err)
	}
	return it, nil
}

// applyUpdate merges the supplied fields into the loaded item, resolving
// reference data against the same transaction.
func applyUpdate(ctx context.Context, tx pgx.Tx, it *Item, req UpdateRequest) error {
	if req.Title.Set {
		it.Title = *req.Title.Value
	}
	if req.IssueNumber.Set {
		it.IssueNumber = *req.IssueNumber.Value
	}
	if req.Publisher.Set {
		publisherID, err := refdata.ResolvePublisher(ctx, tx, req.Publisher.Value)
		if err != nil {
			return err
		}
		it.PublisherID = publisherID
	}
	if req.Grade.Set {
		gradeID, err := refdata.ResolveGrade(ctx, tx, req.Grade.Value)
		if err != nil {
			return err
		}
		it.GradeID = gradeID
	}
	if req.CoverImageURL.Set {
		it.CoverImageURL = req.CoverImageURL.Value
	}
	if req.BuyPrice.Set {
		it.BuyPrice = req.BuyPrice.Value
	}
	if req.CurrentValue.Set {
		it.CurrentValue = req.CurrentValue.Value
	}
	if req.SellPrice.Set {
		it.SellPrice = req.SellPrice.Value
	}
	return nil
}

// Delete removes one of the owner's items and returns the deleted row.
func (s *serviceImpl) Delete(ctx context.Context, ownerID, itemID int) (*Item, error) {
	it, err := scanItem(s.db.QueryRow(ctx,
		`DELETE FROM comic WHERE id = $1 AND user_id = $2 RETURNING `+itemColumns,
		itemID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("comic not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to delete comic", err)
	}
	return it, nil
}
