package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ClockTime is a wall-clock time of day with minute precision, carried with no
// timezone attached (the calendar owner's local convention).
type ClockTime int

func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		t, err = time.Parse("15:04:05", s)
		if err != nil {
			return 0, fmt.Errorf("invalid time %q: %w", s, err)
		}
	}

	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c ClockTime) Add(minutes int) ClockTime {
	return c + ClockTime(minutes)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid time %s", s)
	}

	parsed, err := ParseClockTime(s[1 : len(s)-1])
	if err != nil {
		return err
	}

	*c = parsed
	return nil
}

// Scan accepts the representations lib/pq produces for TIME columns.
func (c *ClockTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		parsed, err := ParseClockTime(v)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	case []byte:
		parsed, err := ParseClockTime(string(v))
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	case time.Time:
		*c = ClockTime(v.Hour()*60 + v.Minute())
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", value)
	}
}

func (c ClockTime) Value() (driver.Value, error) {
	return c.String() + ":00", nil
}

// AvailabilityWindow is an interval during which an owner is open to booking,
// either recurring by weekday or for one specific date. Exactly one of
// DayOfWeek and SpecificDate is set. DayOfWeek uses 0=Monday..6=Sunday.
type AvailabilityWindow struct {
	ID           string     `db:"id"`
	OwnerID      string     `db:"owner_id"`
	DayOfWeek    *int       `db:"day_of_week"`
	SpecificDate *time.Time `db:"specific_date"`
	Start        ClockTime  `db:"start_time"`
	End          ClockTime  `db:"end_time"`
}

func (w *AvailabilityWindow) Validate() error {
	if (w.DayOfWeek == nil) == (w.SpecificDate == nil) {
		return fmt.Errorf("exactly one of day_of_week and specific_date must be set")
	}
	if w.DayOfWeek != nil && (*w.DayOfWeek < 0 || *w.DayOfWeek > 6) {
		return fmt.Errorf("day_of_week must be in [0,6]")
	}
	if w.Start >= w.End {
		return fmt.Errorf("start_time must be before end_time")
	}

	return nil
}

// WeekdayIndex maps time.Weekday (Sunday=0) to the stored 0=Monday..6=Sunday
// convention.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

type CommitmentStatus string

const (
	StatusPending     CommitmentStatus = "pending"
	StatusBooked      CommitmentStatus = "booked"
	StatusRescheduled CommitmentStatus = "rescheduled"
	StatusCancelled   CommitmentStatus = "cancelled"
	StatusCompleted   CommitmentStatus = "completed"
)

// Occupies reports whether a commitment in this status blocks time for slot
// generation and overlap checks.
func (s CommitmentStatus) Occupies() bool {
	return s == StatusBooked || s == StatusRescheduled
}

func (s CommitmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusBooked, StatusRescheduled, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Commitment is a scheduled occupation of an owner's time.
type Commitment struct {
	ID           string           `db:"id"`
	OwnerID      string           `db:"owner_id"`
	InviteeName  string           `db:"invitee_name"`
	InviteeEmail string           `db:"invitee_email"`
	Date         time.Time        `db:"date"`
	Start        ClockTime        `db:"start_time"`
	End          ClockTime        `db:"end_time"`
	Status       CommitmentStatus `db:"status"`
}

// Slot is a fixed-duration candidate booking interval, half-open [Start, End).
type Slot struct {
	Start ClockTime `json:"start_time"`
	End   ClockTime `json:"end_time"`
}

// SlotOffer is a computed slot set for one owner and date. It is ephemeral:
// it lives only in the reservation cache, keyed both by (owner, date) and by
// the reservation tokens issued from it.
type SlotOffer struct {
	OwnerID string `json:"calendar_owner"`
	Date    string `json:"search_date"`
	Slots   []Slot `json:"time_slots"`
}

// Contains reports whether the exact slot appears in the offer.
func (o *SlotOffer) Contains(start, end ClockTime) bool {
	for _, s := range o.Slots {
		if s.Start == start && s.End == end {
			return true
		}
	}
	return false
}

type User struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Email    string `db:"email"`
	Timezone string `db:"timezone"`
}
