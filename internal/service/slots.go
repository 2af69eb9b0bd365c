package service

import (
	"calendar-service/internal/models"
)

// slotDurationMinutes is the fixed length of every offered slot.
const slotDurationMinutes = 60

// computeSlots derives the bookable slots from the applicable availability
// windows minus occupying commitments. Each window is walked independently in
// fixed-duration steps from its start; a trailing step that would run past the
// window's end is dropped. Windows keep their original order and slots within
// a window are chronological; overlapping windows are NOT merged or deduped,
// so they can offer the same interval twice. The result is deterministic for
// the same inputs.
func computeSlots(windows []*models.AvailabilityWindow, commitments []*models.Commitment) []models.Slot {
	slots := make([]models.Slot, 0)

	for _, window := range windows {
		for start := window.Start; start.Add(slotDurationMinutes) <= window.End; start = start.Add(slotDurationMinutes) {
			end := start.Add(slotDurationMinutes)

			if overlapsAny(start, end, commitments) {
				continue
			}

			slots = append(slots, models.Slot{Start: start, End: end})
		}
	}

	return slots
}

// overlapsAny applies the strict half-open interval test: [a,b) overlaps
// [c,d) iff a < d and c < b. Only occupying commitments block time.
func overlapsAny(start, end models.ClockTime, commitments []*models.Commitment) bool {
	for _, c := range commitments {
		if !c.Status.Occupies() {
			continue
		}
		if start < c.End && c.Start < end {
			return true
		}
	}

	return false
}
