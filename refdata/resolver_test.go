package refdata

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelk046/ComicManager/apperror"
)

func strPtr(s string) *string { return &s }

func TestResolvePublisher(t *testing.T) {
	tests := []struct {
		name      string
		input     *string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantID    *int
		wantErr   bool
	}{
		{
			name:      "nil name resolves to nil",
			input:     nil,
			setupMock: func(mock pgxmock.PgxPoolIface) {},
			wantID:    nil,
		},
		{
			name:      "blank name resolves to nil",
			input:     strPtr("   "),
			setupMock: func(mock pgxmock.PgxPoolIface) {},
			wantID:    nil,
		},
		{
			name:  "existing publisher found case-insensitively",
			input: strPtr("  marvel "),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id FROM publisher WHERE lower\(name\) = lower\(\$1\)`).
					WithArgs("marvel").
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(7))
			},
			wantID: intPtr(7),
		},
		{
			name:  "unseen publisher is created",
			input: strPtr("Dark Horse Comics"),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id FROM publisher`).
					WithArgs("Dark Horse Comics").
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectQuery(`INSERT INTO publisher`).
					WithArgs("Dark Horse Comics").
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(12))
			},
			wantID: intPtr(12),
		},
		{
			name:  "concurrent creation falls back to reread",
			input: strPtr("Image Comics"),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id FROM publisher`).
					WithArgs("Image Comics").
					WillReturnError(pgx.ErrNoRows)
				// ON CONFLICT DO NOTHING returns no row when another writer
				// inserted the name first.
				mock.ExpectQuery(`INSERT INTO publisher`).
					WithArgs("Image Comics").
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectQuery(`SELECT id FROM publisher`).
					WithArgs("Image Comics").
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(31))
			},
			wantID: intPtr(31),
		},
		{
			name:  "database error surfaces",
			input: strPtr("Marvel"),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id FROM publisher`).
					WithArgs("Marvel").
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			got, err := ResolvePublisher(context.Background(), mock, tt.input)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestResolveGrade(t *testing.T) {
	tests := []struct {
		name         string
		input        *string
		setupMock    func(mock pgxmock.PgxPoolIface)
		wantID       *int
		wantUnknown  bool
		wantInternal bool
	}{
		{
			name:      "nil abbreviation resolves to nil",
			input:     nil,
			setupMock: func(mock pgxmock.PgxPoolIface) {},
		},
		{
			name:      "blank abbreviation resolves to nil",
			input:     strPtr(""),
			setupMock: func(mock pgxmock.PgxPoolIface) {},
		},
		{
			name:  "known abbreviation resolves to id",
			input: strPtr(" NM "),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id FROM grade WHERE abbreviation = \$1`).
					WithArgs("NM").
					WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(5))
			},
			wantID: intPtr(5),
		},
		{
			name:  "unknown abbreviation is a hard error",
			input: strPtr("ZZ"),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id FROM grade`).
					WithArgs("ZZ").
					WillReturnError(pgx.ErrNoRows)
			},
			wantUnknown: true,
		},
		{
			name:  "database error surfaces",
			input: strPtr("NM"),
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id FROM grade`).
					WithArgs("NM").
					WillReturnError(errors.New("connection refused"))
			},
			wantInternal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			got, err := ResolveGrade(context.Background(), mock, tt.input)

			switch {
			case tt.wantUnknown:
				require.Error(t, err)
				assert.True(t, apperror.IsUnknownGrade(err))
			case tt.wantInternal:
				require.Error(t, err)
				assert.False(t, apperror.IsUnknownGrade(err))
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func intPtr(i int) *int { return &i }
