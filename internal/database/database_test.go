package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, Migrate(path))
	require.NoError(t, Migrate(path))

	db, err := New(path)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"accounts", "categories", "expenses", "audit_log"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, Migrate(path))
	db, err := New(path)
	require.NoError(t, err)
	defer db.Close()

	var on int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&on))
	assert.Equal(t, 1, on)

	_, err = db.Exec(`INSERT INTO expenses (id, description, amount_cents, date, category_id, owner_id)
		VALUES ('e1', 'x', 100, '2025-01-01T00:00:00.000Z', 'missing', 'missing')`)
	assert.Error(t, err)
}

func TestTimeRoundTripOrdersLexically(t *testing.T) {
	a := time.Date(2025, 1, 1, 9, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	b := a.Add(1500 * time.Millisecond)

	sa, sb := FormatTime(a), FormatTime(b)
	assert.Equal(t, "2025-01-01T12:00:00.000000000Z", sa)
	assert.Less(t, sa, sb)

	parsed, err := ParseTime(sb)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(b))
}

func TestFormatTimeKeepsSubMillisecondOrder(t *testing.T) {
	row := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	bound := row.Add(900 * time.Microsecond)

	assert.Less(t, FormatTime(row), FormatTime(bound))
	assert.Equal(t, "2025-01-01T12:00:00.000900000Z", FormatTime(bound))

	parsed, err := ParseTime("2025-01-01T12:00:00.000Z")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(row))
}
