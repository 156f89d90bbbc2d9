package business

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

func TestNormalizeWorkingHoursDayList(t *testing.T) {
	raw := json.RawMessage(`[
		{"day": "monday", "open": "09:00", "close": "18:00"},
		{"day": "saturday", "open": "10:00", "close": "14:00"}
	]`)

	hours, err := NormalizeWorkingHours(raw)
	require.NoError(t, err)

	assert.Equal(t, "09:00", hours.Week.Start)
	assert.Equal(t, "18:00", hours.Week.End)
	assert.Equal(t, "10:00", hours.Weekend.Start)
	assert.Equal(t, "14:00", hours.Weekend.End)
}

func TestNormalizeWorkingHoursLastWriteWins(t *testing.T) {
	raw := json.RawMessage(`[
		{"day": "monday", "open": "08:00", "close": "17:00"},
		{"day": "friday", "open": "10:00", "close": "20:00"},
		{"day": "sunday", "open": "11:00", "close": "13:00"},
		{"day": "saturday", "open": "09:30", "close": "15:00"}
	]`)

	hours, err := NormalizeWorkingHours(raw)
	require.NoError(t, err)

	// Friday overwrote Monday, Saturday overwrote Sunday.
	assert.Equal(t, "10:00", hours.Week.Start)
	assert.Equal(t, "20:00", hours.Week.End)
	assert.Equal(t, "09:30", hours.Weekend.Start)
	assert.Equal(t, "15:00", hours.Weekend.End)
}

func TestNormalizeWorkingHoursIgnoresUnknownDays(t *testing.T) {
	raw := json.RawMessage(`[
		{"day": "monday", "open": "09:00", "close": "18:00"},
		{"day": "funday", "open": "00:00", "close": "23:59"}
	]`)

	hours, err := NormalizeWorkingHours(raw)
	require.NoError(t, err)

	assert.Equal(t, "09:00", hours.Week.Start)
	assert.Equal(t, "18:00", hours.Week.End)
	assert.Empty(t, hours.Weekend.Start)
	assert.Empty(t, hours.Weekend.End)
}

func TestNormalizeWorkingHoursDayCaseInsensitive(t *testing.T) {
	raw := json.RawMessage(`[{"day": "Monday", "open": "09:00", "close": "18:00"}]`)

	hours, err := NormalizeWorkingHours(raw)
	require.NoError(t, err)
	assert.Equal(t, "09:00", hours.Week.Start)
}

func TestNormalizeWorkingHoursTimeOut(t *testing.T) {
	raw := json.RawMessage(`[
		{"day": "tuesday", "open": "09:00", "close": "18:00", "timeOut": {"start": "12:00", "end": "13:00"}}
	]`)

	hours, err := NormalizeWorkingHours(raw)
	require.NoError(t, err)
	assert.Equal(t, "12:00", hours.Week.TimeOut.Start)
	assert.Equal(t, "13:00", hours.Week.TimeOut.End)
}

func TestNormalizeWorkingHoursStructured(t *testing.T) {
	raw := json.RawMessage(`{
		"week": {"start": "08:30", "time-out": {"start": "12:00", "end": "14:00"}, "end": "19:00"},
		"weekend": {"start": "10:00", "end": "16:00"}
	}`)

	hours, err := NormalizeWorkingHours(raw)
	require.NoError(t, err)

	assert.Equal(t, "08:30", hours.Week.Start)
	assert.Equal(t, "19:00", hours.Week.End)
	assert.Equal(t, "12:00", hours.Week.TimeOut.Start)
	assert.Equal(t, "10:00", hours.Weekend.Start)
	assert.Equal(t, "16:00", hours.Weekend.End)
}

func TestNormalizeWorkingHoursStructuredMissingBucket(t *testing.T) {
	cases := map[string]string{
		"missing weekend": `{"week": {"start": "09:00", "end": "18:00"}}`,
		"missing week":    `{"weekend": {"start": "10:00", "end": "14:00"}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NormalizeWorkingHours(json.RawMessage(raw))
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		})
	}
}

func TestNormalizeWorkingHoursKeepsTimesOpaque(t *testing.T) {
	t.Run("day list", func(t *testing.T) {
		raw := json.RawMessage(`[{"day": "monday", "open": "9am", "close": "18:00"}]`)

		hours, err := NormalizeWorkingHours(raw)
		require.NoError(t, err)
		assert.Equal(t, "9am", hours.Week.Start)
		assert.Equal(t, "18:00", hours.Week.End)
	})

	t.Run("structured", func(t *testing.T) {
		raw := json.RawMessage(`{"week": {"start": "morning", "end": "18:00"}, "weekend": {"start": "", "end": ""}}`)

		hours, err := NormalizeWorkingHours(raw)
		require.NoError(t, err)
		assert.Equal(t, "morning", hours.Week.Start)
		assert.Equal(t, "", hours.Weekend.Start)
	})
}

func TestNormalizeWorkingHoursRejectsEmptyInput(t *testing.T) {
	for name, raw := range map[string]string{
		"blank":      "",
		"empty list": "[]",
		"garbage":    "not json",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NormalizeWorkingHours(json.RawMessage(raw))
			require.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		})
	}
}
