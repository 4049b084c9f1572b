package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/isdelr/despesas-be/internal/auth"
	"github.com/isdelr/despesas-be/internal/database"
	"github.com/isdelr/despesas-be/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.Migrate(path), "failed to migrate test database")
	db, err := database.New(path)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestUser(t *testing.T, db *sql.DB, email string) models.Account {
	t.Helper()
	users := NewUserService(db, auth.NewPasswordHasher(bcrypt.MinCost))
	account, err := users.CreateUser(context.Background(), "Test "+email, email, "password")
	require.NoError(t, err)
	return account
}

func mustExpense(t *testing.T, description string, amount float64, categoryID string, date time.Time) models.Expense {
	t.Helper()
	e, err := models.NewExpense(description, amount, categoryID, date)
	require.NoError(t, err)
	return e
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}
