package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kinsa/parking-attendant/internal/parking/service"
)

var fixedNow = time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)

func TestParseQueryWindow_Defaults(t *testing.T) {
	w, err := service.ParseQueryWindow(service.WindowParams{}, fixedNow, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, fixedNow, w.Reference)
	assert.Equal(t, service.DefaultWindowMinutes, w.DurationMinutes)
	assert.Nil(t, w.From)
	require.NotNil(t, w.To)
	assert.Equal(t, fixedNow, *w.To)
}

func TestParseQueryWindow_ExplicitBounds(t *testing.T) {
	w, err := service.ParseQueryWindow(service.WindowParams{
		QueryTo:   "2026-01-10 18:30:00",
		QueryFrom: "2026-01-10 08:00:00",
		Window:    "45",
	}, fixedNow, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 10, 18, 30, 0, 0, time.UTC), w.Reference)
	assert.Equal(t, 45, w.DurationMinutes)
	require.NotNil(t, w.From)
	assert.Equal(t, time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC), *w.From)
	assert.Equal(t, 45*time.Minute, w.Duration())
}

func TestParseQueryWindow_DefaultMinutesOverride(t *testing.T) {
	w, err := service.ParseQueryWindow(service.WindowParams{DefaultMinutes: 30}, fixedNow, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 30, w.DurationMinutes)
}

func TestParseQueryWindow_Failures(t *testing.T) {
	tests := []struct {
		name  string
		p     service.WindowParams
		want  error
		field string
	}{
		{"calendar-invalid query_to", service.WindowParams{QueryTo: "2026-02-30 10:00:00"}, service.ErrInvalidDate, "query_to"},
		{"unpadded query_to", service.WindowParams{QueryTo: "2026-2-1 10:00:00"}, service.ErrInvalidDate, "query_to"},
		{"iso query_to", service.WindowParams{QueryTo: "2026-02-01T10:00:00Z"}, service.ErrInvalidDate, "query_to"},
		{"hour out of range", service.WindowParams{QueryTo: "2026-02-01 24:00:00"}, service.ErrInvalidDate, "query_to"},
		{"window zebra", service.WindowParams{Window: "zebra"}, service.ErrInvalidWindow, "window"},
		{"window zero", service.WindowParams{Window: "0"}, service.ErrInvalidWindow, "window"},
		{"window negative", service.WindowParams{Window: "-5"}, service.ErrInvalidWindow, "window"},
		{"window fractional", service.WindowParams{Window: "1.5"}, service.ErrInvalidWindow, "window"},
		{"window signed", service.WindowParams{Window: "+5"}, service.ErrInvalidWindow, "window"},
		{"window overflow", service.WindowParams{Window: "99999999999999999999"}, service.ErrInvalidWindow, "window"},
		{"window beyond duration range", service.WindowParams{Window: "200000000000000"}, service.ErrInvalidWindow, "window"},
		{"invalid query_from", service.WindowParams{QueryFrom: "yesterday"}, service.ErrInvalidDate, "query_from"},
		{
			"from after to",
			service.WindowParams{QueryFrom: "2026-02-15 13:00:00", QueryTo: "2026-02-15 12:00:00"},
			service.ErrRangeOrder, "query_from",
		},
		{"from after now", service.WindowParams{QueryFrom: "2026-02-15 12:00:01"}, service.ErrRangeOrder, "query_from"},
		// First failure wins.
		{"query_to before window", service.WindowParams{QueryTo: "bad", Window: "zebra"}, service.ErrInvalidDate, "query_to"},
		{"window before query_from", service.WindowParams{Window: "zebra", QueryFrom: "bad"}, service.ErrInvalidWindow, "window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ParseQueryWindow(tt.p, fixedNow, time.UTC)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			ve, ok := service.AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestParseQueryWindow_Messages(t *testing.T) {
	_, err := service.ParseQueryWindow(service.WindowParams{QueryTo: "nope"}, fixedNow, time.UTC)
	assert.EqualError(t, err, "Invalid query_to format or invalid date/time values. Use YYYY-MM-DD HH:MM:SS with valid dates.")

	_, err = service.ParseQueryWindow(service.WindowParams{QueryTo: "nope", ToField: "datetime"}, fixedNow, time.UTC)
	assert.EqualError(t, err, "Invalid datetime format or invalid date/time values. Use YYYY-MM-DD HH:MM:SS with valid dates.")

	_, err = service.ParseQueryWindow(service.WindowParams{Window: "zebra"}, fixedNow, time.UTC)
	assert.EqualError(t, err, "Invalid window format or value. Window must be a positive integer value.")

	_, err = service.ParseQueryWindow(service.WindowParams{QueryFrom: "2026-02-16 00:00:00"}, fixedNow, time.UTC)
	assert.EqualError(t, err, "query_from must be earlier than or equal to query_to.")
}

func TestParseQueryWindow_FromEqualToReference(t *testing.T) {
	_, err := service.ParseQueryWindow(service.WindowParams{
		QueryFrom: "2026-02-15 12:00:00",
		QueryTo:   "2026-02-15 12:00:00",
	}, fixedNow, time.UTC)
	assert.NoError(t, err)
}

func TestParseQueryWindow_Location(t *testing.T) {
	loc := time.FixedZone("BST", 3600)
	w, err := service.ParseQueryWindow(service.WindowParams{QueryTo: "2026-06-01 09:00:00"}, fixedNow, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC), w.Reference.UTC())
}

func TestQueryWindow_Contains(t *testing.T) {
	from := fixedNow.Add(-time.Hour)
	to := fixedNow
	w := service.QueryWindow{Reference: fixedNow, DurationMinutes: 60, From: &from, To: &to}

	assert.True(t, w.Contains(from))
	assert.True(t, w.Contains(to))
	assert.False(t, w.Contains(from.Add(-time.Second)))
	assert.False(t, w.Contains(to.Add(time.Second)))

	open := service.QueryWindow{Reference: fixedNow, DurationMinutes: 60}
	assert.True(t, open.Contains(fixedNow.AddDate(-5, 0, 0)))
	assert.False(t, open.Contains(fixedNow.Add(time.Second)))
}

func TestValidationError_IsMatchesKindOnly(t *testing.T) {
	_, err := service.ParseQueryWindow(service.WindowParams{QueryFrom: "x"}, fixedNow, time.UTC)
	assert.True(t, errors.Is(err, service.ErrInvalidDate))
	assert.False(t, errors.Is(err, service.ErrInvalidWindow))
}
