package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/isdelr/despesas-be/internal/services"
)

const dateOnly = "2006-01-02"

var errBadRange = errors.New("bad date range")

// parseDateRange reads the inicio/fim query parameters. The window applies
// only when both are present. A date-only fim covers that whole day.
func parseDateRange(r *http.Request) (*services.DateRange, error) {
	q := r.URL.Query()
	inicio, fim := q.Get("inicio"), q.Get("fim")
	if inicio == "" || fim == "" {
		return nil, nil
	}

	start, _, err := parseInstant(inicio)
	if err != nil {
		return nil, errBadRange
	}
	end, dateOnlyEnd, err := parseInstant(fim)
	if err != nil {
		return nil, errBadRange
	}
	if dateOnlyEnd {
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	if end.Before(start) {
		return nil, errBadRange
	}
	return &services.DateRange{Start: start, End: end}, nil
}

// parseInstant accepts RFC 3339 or YYYY-MM-DD, the latter as midnight UTC.
func parseInstant(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// parseBodyDate reads an expense date. Date-only values are pinned to noon
// UTC so they land on the same calendar day in any client timezone.
func parseBodyDate(s string) (time.Time, error) {
	t, isDateOnly, err := parseInstant(s)
	if err != nil {
		return time.Time{}, err
	}
	if isDateOnly {
		t = t.Add(12 * time.Hour)
	}
	return t, nil
}

func writeRangeError(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "Período inválido")
}
