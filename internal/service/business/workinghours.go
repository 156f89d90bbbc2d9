package business

import (
	"encoding/json"
	"strings"

	"github.com/agendahub/booking-api/internal/model"
	apperrors "github.com/agendahub/booking-api/pkg/errors"
)

// scheduleEntry is one element of the per-day list form of working
// hours input.
type scheduleEntry struct {
	Day     string         `json:"day"`
	Open    string         `json:"open"`
	Close   string         `json:"close"`
	TimeOut *model.TimeOut `json:"timeOut"`
}

// structuredHours is the alternative fixed-shape input form.
type structuredHours struct {
	Week *struct {
		Start   string         `json:"start"`
		End     string         `json:"end"`
		TimeOut *model.TimeOut `json:"time-out"`
	} `json:"week"`
	Weekend *struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"weekend"`
}

var weekdays = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
}

var weekendDays = map[string]bool{
	"saturday": true,
	"sunday":   true,
}

// NormalizeWorkingHours folds either input form of working hours into
// the fixed two-bucket shape that is persisted.
//
// The list form is folded last-write-wins per bucket: a later entry for
// the same bucket silently overwrites an earlier one, and entries whose
// day matches neither bucket are ignored. Unset buckets keep empty
// strings rather than being omitted.
func NormalizeWorkingHours(raw json.RawMessage) (model.WorkingHours, error) {
	var out model.WorkingHours

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return out, apperrors.Validation("working hours are required")
	}

	if strings.HasPrefix(trimmed, "{") {
		return normalizeStructured(raw)
	}

	var entries []scheduleEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return out, apperrors.Validation("working hours must be a list of day entries or a week/weekend object")
	}
	if len(entries) == 0 {
		return out, apperrors.Validation("working hours must not be empty")
	}

	for _, entry := range entries {
		day := strings.ToLower(entry.Day)
		if !weekdays[day] && !weekendDays[day] {
			continue
		}
		switch {
		case weekdays[day]:
			out.Week.Start = entry.Open
			out.Week.End = entry.Close
			if entry.TimeOut != nil {
				out.Week.TimeOut = *entry.TimeOut
			}
		case weekendDays[day]:
			out.Weekend.Start = entry.Open
			out.Weekend.End = entry.Close
		}
	}

	return out, nil
}

func normalizeStructured(raw json.RawMessage) (model.WorkingHours, error) {
	var out model.WorkingHours

	var structured structuredHours
	if err := json.Unmarshal(raw, &structured); err != nil {
		return out, apperrors.Validation("working hours must be a list of day entries or a week/weekend object")
	}
	if structured.Week == nil || structured.Weekend == nil {
		return out, apperrors.Validation("working hours must include both week and weekend schedules")
	}

	out.Week.Start = structured.Week.Start
	out.Week.End = structured.Week.End
	if structured.Week.TimeOut != nil {
		out.Week.TimeOut = *structured.Week.TimeOut
	}
	out.Weekend.Start = structured.Weekend.Start
	out.Weekend.End = structured.Weekend.End

	return out, nil
}
