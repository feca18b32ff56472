package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventmanager/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestProfileRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		profile *domain.Profile
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name:    "success",
			profile: &domain.Profile{ID: "user-1", Email: "alice@example.com", FullName: "Alice", CreatedAt: now, UpdatedAt: now},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO profiles \(id, email, full_name, created_at, updated_at\)`).
					WithArgs("user-1", "alice@example.com", "Alice", now, now).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:    "empty name stored as null",
			profile: &domain.Profile{ID: "user-1", Email: "alice@example.com", CreatedAt: now, UpdatedAt: now},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO profiles`).
					WithArgs("user-1", "alice@example.com", nil, now, now).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:    "unique violation returns ErrDuplicate",
			profile: &domain.Profile{ID: "user-1", Email: "alice@example.com", CreatedAt: now, UpdatedAt: now},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO profiles`).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: true,
			errIs:   domain.ErrDuplicate,
		},
		{
			name:    "db error",
			profile: &domain.Profile{ID: "user-1", Email: "alice@example.com"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO profiles`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewProfileRepository(db)
			err = repo.Create(ctx, tt.profile)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProfileRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found with null name", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT id, email, full_name, created_at, updated_at\s+FROM profiles`).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "created_at", "updated_at"}).
				AddRow("user-1", "alice@example.com", nil, now, now))

		p, err := NewProfileRepository(db).GetByID(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", p.Email)
		require.Empty(t, p.FullName)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM profiles`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

		_, err = NewProfileRepository(db).GetByID(ctx, "missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
