package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{"09:00", 9 * 60, false},
		{"15:04", 15*60 + 4, false},
		{"09:30:00", 9*60 + 30, false},
		{"00:00", 0, false},
		{"23:59", 23*60 + 59, false},
		{"25:00", 0, true},
		{"9am", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseClockTime(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClockTime(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClockTime(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClockTime(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestClockTimeString(t *testing.T) {
	if got := ClockTime(9 * 60).String(); got != "09:00" {
		t.Errorf("String() = %q, want 09:00", got)
	}
	if got := ClockTime(13*60 + 5).String(); got != "13:05" {
		t.Errorf("String() = %q, want 13:05", got)
	}
}

func TestClockTimeJSONRoundTrip(t *testing.T) {
	slot := Slot{Start: 9 * 60, End: 10 * 60}

	data, err := json.Marshal(slot)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"start_time":"09:00","end_time":"10:00"}` {
		t.Fatalf("unexpected JSON: %s", data)
	}

	var decoded Slot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != slot {
		t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, slot)
	}
}

func TestClockTimeScan(t *testing.T) {
	var c ClockTime

	if err := c.Scan("10:30:00"); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if c != 10*60+30 {
		t.Fatalf("scan string = %d, want %d", c, 10*60+30)
	}

	if err := c.Scan([]byte("08:15:00")); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if c != 8*60+15 {
		t.Fatalf("scan bytes = %d, want %d", c, 8*60+15)
	}

	if err := c.Scan(time.Date(0, 1, 1, 14, 45, 0, 0, time.UTC)); err != nil {
		t.Fatalf("scan time: %v", err)
	}
	if c != 14*60+45 {
		t.Fatalf("scan time = %d, want %d", c, 14*60+45)
	}

	if err := c.Scan(42); err == nil {
		t.Fatal("scan int: expected error")
	}
}

func TestAvailabilityWindowValidate(t *testing.T) {
	monday := 0
	date := time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		window  AvailabilityWindow
		wantErr bool
	}{
		{
			name:   "recurring ok",
			window: AvailabilityWindow{DayOfWeek: &monday, Start: 9 * 60, End: 12 * 60},
		},
		{
			name:   "specific date ok",
			window: AvailabilityWindow{SpecificDate: &date, Start: 9 * 60, End: 12 * 60},
		},
		{
			name:    "neither set",
			window:  AvailabilityWindow{Start: 9 * 60, End: 12 * 60},
			wantErr: true,
		},
		{
			name:    "both set",
			window:  AvailabilityWindow{DayOfWeek: &monday, SpecificDate: &date, Start: 9 * 60, End: 12 * 60},
			wantErr: true,
		},
		{
			name:    "start after end",
			window:  AvailabilityWindow{DayOfWeek: &monday, Start: 9 * 60, End: 8 * 60},
			wantErr: true,
		},
		{
			name:    "start equals end",
			window:  AvailabilityWindow{DayOfWeek: &monday, Start: 9 * 60, End: 9 * 60},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.window.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestWeekdayIndex(t *testing.T) {
	// 2025-01-27 is a Monday.
	monday := time.Date(2025, 1, 27, 0, 0, 0, 0, time.UTC)
	if got := WeekdayIndex(monday); got != 0 {
		t.Fatalf("WeekdayIndex(Monday) = %d, want 0", got)
	}

	sunday := monday.AddDate(0, 0, 6)
	if got := WeekdayIndex(sunday); got != 6 {
		t.Fatalf("WeekdayIndex(Sunday) = %d, want 6", got)
	}
}

func TestStatusOccupies(t *testing.T) {
	occupying := map[CommitmentStatus]bool{
		StatusBooked:      true,
		StatusRescheduled: true,
		StatusPending:     false,
		StatusCancelled:   false,
		StatusCompleted:   false,
	}

	for status, want := range occupying {
		if got := status.Occupies(); got != want {
			t.Errorf("%s.Occupies() = %v, want %v", status, got, want)
		}
	}
}

func TestSlotOfferContains(t *testing.T) {
	offer := SlotOffer{
		OwnerID: "owner-1",
		Date:    "2025-01-27",
		Slots: []Slot{
			{Start: 9 * 60, End: 10 * 60},
			{Start: 11 * 60, End: 12 * 60},
		},
	}

	if !offer.Contains(9*60, 10*60) {
		t.Fatal("expected offer to contain 09:00-10:00")
	}
	if offer.Contains(10*60, 11*60) {
		t.Fatal("did not expect offer to contain 10:00-11:00")
	}
	// Membership is verbatim; a sub-interval of an offered slot does not count.
	if offer.Contains(9*60, 9*60+30) {
		t.Fatal("did not expect offer to contain 09:00-09:30")
	}
}
