package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantNil   bool
		wantErr   bool
		wantStart time.Time
		wantEnd   time.Time
	}{
		{name: "no params", query: "", wantNil: true},
		{name: "only inicio", query: "inicio=2024-03-01", wantNil: true},
		{name: "only fim", query: "fim=2024-03-31", wantNil: true},
		{
			name:      "date-only bounds cover the last day",
			query:     "inicio=2024-03-01&fim=2024-03-31",
			wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 31, 23, 59, 59, 999_999_999, time.UTC),
		},
		{
			name:      "instants are taken as given",
			query:     "inicio=2024-03-01T10:00:00-03:00&fim=2024-03-02T00:00:00Z",
			wantStart: time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		{name: "same day", query: "inicio=2024-03-01&fim=2024-03-01", wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), wantEnd: time.Date(2024, 3, 1, 23, 59, 59, 999_999_999, time.UTC)},
		{name: "reversed", query: "inicio=2024-04-01&fim=2024-03-01", wantErr: true},
		{name: "garbage", query: "inicio=ontem&fim=hoje", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/despesas?"+tt.query, nil)
			window, err := parseDateRange(r)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, window)
				return
			}
			require.NotNil(t, window)
			assert.True(t, tt.wantStart.Equal(window.Start), "start %v", window.Start)
			assert.True(t, tt.wantEnd.Equal(window.End), "end %v", window.End)
		})
	}
}

func TestParseBodyDate(t *testing.T) {
	d, err := parseBodyDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), d)

	d, err = parseBodyDate("2024-03-01T08:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), d)

	_, err = parseBodyDate("01/03/2024")
	assert.Error(t, err)
}
