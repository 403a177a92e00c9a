package items

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelk046/ComicManager/apperror"
)

var itemCols = []string{
	"id", "user_id", "title", "issue_number", "publisher_id", "grade_id",
	"cover_image_url", "buy_price", "current_value", "sell_price", "created_at",
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func itemRow(id, userID int, title, issue string, publisherID, gradeID *int, created time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(itemCols).
		AddRow(id, userID, title, issue, publisherID, gradeID, nil, nil, nil, nil, created)
}

func newTestService(t *testing.T) (Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewService(mock), mock
}

func TestList(t *testing.T) {
	now := time.Now()

	t.Run("returns the owner's page newest first", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery(`SELECT .+ FROM comic\s+WHERE user_id = \$1`).
			WithArgs(7, 0, 100).
			WillReturnRows(pgxmock.NewRows(itemCols).
				AddRow(2, 7, "Saga", "2", nil, nil, nil, nil, nil, nil, now).
				AddRow(1, 7, "Saga", "1", intPtr(3), intPtr(5), nil, nil, nil, nil, now.Add(-time.Hour)))

		got, err := svc.List(context.Background(), 7, 0, 100)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 2, got[0].ID)
		assert.Equal(t, intPtr(3), got[1].PublisherID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty collection serializes as [] not null", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery(`SELECT .+ FROM comic\s+WHERE user_id = \$1`).
			WithArgs(7, 0, 100).
			WillReturnRows(pgxmock.NewRows(itemCols))

		got, err := svc.List(context.Background(), 7, 0, 100)
		require.NoError(t, err)
		require.NotNil(t, got)

		data, err := json.Marshal(got)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error surfaces", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery(`SELECT .+ FROM comic`).
			WithArgs(7, 0, 100).
			WillReturnError(errors.New("connection refused"))

		_, err := svc.List(context.Background(), 7, 0, 100)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGet(t *testing.T) {
	now := time.Now()

	t.Run("owner sees their item", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery(`SELECT .+ FROM comic WHERE id = \$1 AND user_id = \$2`).
			WithArgs(1, 7).
			WillReturnRows(itemRow(1, 7, "Saga", "1", nil, nil, now))

		got, err := svc.Get(context.Background(), 7, 1)
		require.NoError(t, err)
		assert.Equal(t, "Saga", got.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("another user's item looks absent", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery(`SELECT .+ FROM comic WHERE id = \$1 AND user_id = \$2`).
			WithArgs(1, 8).
			WillReturnError(pgx.ErrNoRows)

		_, err := svc.Get(context.Background(), 8, 1)
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreate(t *testing.T) {
	now := time.Now()

	t.Run("resolves references and inserts in one transaction", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM publisher`).
			WithArgs("Marvel").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectQuery(`SELECT id FROM grade`).
			WithArgs("NM").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(5))
		mock.ExpectQuery(`INSERT INTO comic`).
			WithArgs(7, "Amazing Spider-Man", "300", intPtr(3), intPtr(5),
				(*string)(nil), (*float64)(nil), (*float64)(nil), (*float64)(nil)).
			WillReturnRows(itemRow(1, 7, "Amazing Spider-Man", "300", intPtr(3), intPtr(5), now))
		mock.ExpectCommit()

		got, err := svc.Create(context.Background(), 7, CreateRequest{
			Title:       "Amazing Spider-Man",
			IssueNumber: "300",
			Publisher:   strPtr("Marvel"),
			Grade:       strPtr("NM"),
		})
		require.NoError(t, err)
		assert.Equal(t, intPtr(3), got.PublisherID)
		assert.Equal(t, intPtr(5), got.GradeID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown grade aborts before insert", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM grade`).
			WithArgs("ZZ").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		_, err := svc.Create(context.Background(), 7, CreateRequest{
			Title:       "Saga",
			IssueNumber: "1",
			Grade:       strPtr("ZZ"),
		})
		require.Error(t, err)
		assert.True(t, apperror.IsUnknownGrade(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("validation fails without touching the database", func(t *testing.T) {
		svc, mock := newTestService(t)

		_, err := svc.Create(context.Background(), 7, CreateRequest{Title: "", IssueNumber: "1"})
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no references means no resolver queries", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO comic`).
			WithArgs(7, "Saga", "1", (*int)(nil), (*int)(nil),
				(*string)(nil), (*float64)(nil), (*float64)(nil), (*float64)(nil)).
			WillReturnRows(itemRow(1, 7, "Saga", "1", nil, nil, now))
		mock.ExpectCommit()

		got, err := svc.Create(context.Background(), 7, CreateRequest{Title: "Saga", IssueNumber: "1"})
		require.NoError(t, err)
		assert.Nil(t, got.PublisherID)
		assert.Nil(t, got.GradeID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdate(t *testing.T) {
	now := time.Now()

	t.Run("merges supplied fields and keeps the rest", func(t *testing.T) {
		svc, mock := newTestService(t)

		var req UpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title":"Saga Deluxe","grade":null}`), &req))

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .+ FROM comic WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs(1, 7).
			WillReturnRows(itemRow(1, 7, "Saga", "1", intPtr(3), intPtr(5), now))
		mock.ExpectExec(`UPDATE comic`).
			WithArgs("Saga Deluxe", "1", intPtr(3), (*int)(nil),
				(*string)(nil), (*float64)(nil), (*float64)(nil), (*float64)(nil), 1, 7).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		got, err := svc.Update(context.Background(), 7, 1, req)
		require.NoError(t, err)
		assert.Equal(t, "Saga Deluxe", got.Title)
		assert.Equal(t, intPtr(3), got.PublisherID, "publisher untouched by the patch")
		assert.Nil(t, got.GradeID, "explicit null clears the grade")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("new publisher text is resolved inside the transaction", func(t *testing.T) {
		svc, mock := newTestService(t)

		var req UpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"publisher":"Image Comics"}`), &req))

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .+ FROM comic WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs(1, 7).
			WillReturnRows(itemRow(1, 7, "Saga", "1", nil, nil, now))
		mock.ExpectQuery(`SELECT id FROM publisher`).
			WithArgs("Image Comics").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(12))
		mock.ExpectExec(`UPDATE comic`).
			WithArgs("Saga", "1", intPtr(12), (*int)(nil),
				(*string)(nil), (*float64)(nil), (*float64)(nil), (*float64)(nil), 1, 7).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		got, err := svc.Update(context.Background(), 7, 1, req)
		require.NoError(t, err)
		assert.Equal(t, intPtr(12), got.PublisherID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("another user's item is not found", func(t *testing.T) {
		svc, mock := newTestService(t)

		var req UpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title":"Theft"}`), &req))

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .+ FROM comic WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs(1, 8).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		_, err := svc.Update(context.Background(), 8, 1, req)
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid patch fails before the transaction", func(t *testing.T) {
		svc, mock := newTestService(t)

		var req UpdateRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title":null}`), &req))

		_, err := svc.Update(context.Background(), 7, 1, req)
		require.Error(t, err)
		assert.True(t, apperror.IsValidationError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDelete(t *testing.T) {
	now := time.Now()

	t.Run("returns the deleted row", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery(`DELETE FROM comic WHERE id = \$1 AND user_id = \$2`).
			WithArgs(1, 7).
			WillReturnRows(itemRow(1, 7, "Saga", "1", nil, nil, now))

		got, err := svc.Delete(context.Background(), 7, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("another user's item is not found", func(t *testing.T) {
		svc, mock := newTestService(t)
		mock.ExpectQuery(`DELETE FROM comic WHERE id = \$1 AND user_id = \$2`).
			WithArgs(1, 8).
			WillReturnError(pgx.ErrNoRows)

		_, err := svc.Delete(context.Background(), 8, 1)
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
