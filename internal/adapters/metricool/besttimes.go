package metricool

import (
	"encoding/json"
	"math"
	"time"

	"social-scheduler/internal/domain"
)

type bestTimesEntry struct {
	DayOfWeek       *float64          `json:"dayOfWeek"`
	BestTimesByHour []json.RawMessage `json:"bestTimesByHour"`
}

type hourEntry struct {
	HourOfDay *float64 `json:"hourOfDay"`
	Value     *float64 `json:"value"`
}

// ParseBestTimes разбирает ответ best times: массив или объект с полем data.
// Записи неожиданной формы пропускаются, ошибка разбора никогда не возвращается.
func ParseBestTimes(raw []byte) []domain.BestTimeSlot {
	slots := make([]domain.BestTimeSlot, 0)

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		var wrapped struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return slots
		}
		entries = wrapped.Data
	}

	for _, rawEntry := range entries {
		var entry bestTimesEntry
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			continue
		}
		day, ok := wholeNumber(entry.DayOfWeek, 0, 6)
		if !ok || entry.BestTimesByHour == nil {
			continue
		}
		for _, rawHour := range entry.BestTimesByHour {
			var h hourEntry
			if err := json.Unmarshal(rawHour, &h); err != nil {
				continue
			}
			hour, ok := wholeNumber(h.HourOfDay, 0, 23)
			if !ok || h.Value == nil {
				continue
			}
			slots = append(slots, domain.BestTimeSlot{Day: time.Weekday(day), Hour: hour, Score: *h.Value})
		}
	}
	return slots
}

func wholeNumber(v *float64, min, max int) (int, bool) {
	if v == nil || *v != math.Trunc(*v) {
		return 0, false
	}
	n := int(*v)
	if n < min || n > max {
		return 0, false
	}
	return n, true
}
