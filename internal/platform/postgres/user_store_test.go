package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func testUser(t *testing.T) *domain.User {
	t.Helper()
	user, err := domain.NewUser("Ada Lovelace", "ada@example.com", "$2a$04$hash")
	require.NoError(t, err)
	return user
}

var userRowColumns = []string{"id", "name", "email", "hashed_password", "created_at", "updated_at"}

func TestPostgresUserStore_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)
		user := testUser(t)

		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Name, user.Email, user.HashedPassword, user.CreatedAt, user.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Create(context.Background(), user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		err := s.Create(context.Background(), testUser(t))
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("invalid user never reaches the database", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)
		user := testUser(t)
		user.Name = ""

		err := s.Create(context.Background(), user)
		assert.ErrorIs(t, err, domain.ErrEmptyUserName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresUserStore_Get(t *testing.T) {
	user := testUser(t)
	now := time.Now().UTC()

	t.Run("by id", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
			WithArgs(user.ID).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(user.ID.String(), user.Name, user.Email, user.HashedPassword, now, now))

		got, err := s.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Email, got.Email)
	})

	t.Run("by email is normalized", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(user.ID.String(), user.Name, user.Email, user.HashedPassword, now, now))

		got, err := s.GetByEmail(context.Background(), "  ADA@example.com ")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectQuery("SELECT (.+) FROM users").WillReturnError(sql.ErrNoRows)

		_, err := s.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestPostgresUserStore_Update(t *testing.T) {
	t.Run("missing user", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.Update(context.Background(), testUser(t))
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, nil)

		mock.ExpectExec("UPDATE users").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		err := s.Update(context.Background(), testUser(t))
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})
}

func TestPostgresUserStore_List(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresUserStore(db, nil)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY name").
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(uuid.NewString(), "Ada", "ada@example.com", "h", now, now).
			AddRow(uuid.NewString(), "Grace", "grace@example.com", "h", now, now))

	users, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ada", users[0].Name)
	assert.Equal(t, "Grace", users[1].Name)
}

func TestPostgresUserStore_WithTx(t *testing.T) {
	db, mock := newMock(t)
	s := NewPostgresUserStore(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, s.WithTx(tx).Create(context.Background(), testUser(t)))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
