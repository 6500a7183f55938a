package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horizon/internal/domain/user"
)

func newTestDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &DB{db}, mock
}

func userRow(id int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "password_hash", "payments_customer_id", "payments_customer_url", "created_at", "updated_at"}).
		AddRow(id, "ada@example.com", "Ada", "Lovelace", "hash", "cust-1", "https://pay.example/customers/1", now, now)
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ada@example.com", "Ada", "Lovelace", "hash", "cust-1", "https://pay.example/customers/1").
		WillReturnRows(userRow(1))

	u, err := repo.Create(context.Background(), user.CreateUserParams{
		Email:               "ada@example.com",
		FirstName:           "Ada",
		LastName:            "Lovelace",
		PasswordHash:        "hash",
		PaymentsCustomerID:  "cust-1",
		PaymentsCustomerURL: "https://pay.example/customers/1",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUserRepository(db)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("FROM users").
			WithArgs(int64(1)).
			WillReturnRows(userRow(1))

		u, err := repo.GetByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", u.FullName())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("FROM users").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(context.Background(), 42)
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("FROM users").
		WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
