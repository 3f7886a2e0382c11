package plans

import (
	"testing"
	"time"
)

// --- FormatWeekKey / ParseWeekKey ---

func TestFormatWeekKey(t *testing.T) {
	cases := []struct {
		date time.Time
		want string
	}{
		{time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), "15-Jan-2024"},
		{time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), "04-Mar-2024"},
		{time.Date(2023, time.December, 25, 0, 0, 0, 0, time.UTC), "25-Dec-2023"},
	}
	for _, tc := range cases {
		if got := FormatWeekKey(tc.date); got != tc.want {
			t.Errorf("FormatWeekKey(%v) = %q, want %q", tc.date, got, tc.want)
		}
	}
}

func TestParseWeekKey_RoundTrip(t *testing.T) {
	for _, key := range []string{"15-Jan-2024", "04-Mar-2024", "01-Jan-2001"} {
		ws, err := ParseWeekKey(key)
		if err != nil {
			t.Errorf("ParseWeekKey(%q) failed: %v", key, err)
			continue
		}
		if got := FormatWeekKey(ws); got != key {
			t.Errorf("round trip of %q gave %q", key, got)
		}
		if ws.Location() != time.UTC {
			t.Errorf("ParseWeekKey(%q) location = %v, want UTC", key, ws.Location())
		}
	}
}

func TestParseWeekKey_Invalid(t *testing.T) {
	for _, key := range []string{
		"",
		"4-Mar-2024",     // day not zero-padded
		"04-March-2024",  // full month name
		"2024-03-04",     // wrong layout
		"32-Jan-2024",    // out of range
		"15-jan-2024",    // wrong case
		"15-Jan-2024.md", // suffix leakage
	} {
		if _, err := ParseWeekKey(key); err == nil {
			t.Errorf("ParseWeekKey(%q) = nil error, want failure", key)
		}
	}
}

// --- MondayOf ---

func TestMondayOf(t *testing.T) {
	monday := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   time.Time
	}{
		{"monday itself", monday},
		{"midweek", time.Date(2024, time.January, 17, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2024, time.January, 21, 0, 0, 0, 0, time.UTC)},
		{"with time of day", time.Date(2024, time.January, 18, 23, 59, 59, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := MondayOf(tc.in); !got.Equal(monday) {
			t.Errorf("%s: MondayOf(%v) = %v, want %v", tc.name, tc.in, got, monday)
		}
	}
}

func TestMondayOf_CrossesMonthBoundary(t *testing.T) {
	// Friday 1 Mar 2024 belongs to the week starting Monday 26 Feb.
	in := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	want := time.Date(2024, time.February, 26, 0, 0, 0, 0, time.UTC)
	if got := MondayOf(in); !got.Equal(want) {
		t.Errorf("MondayOf(%v) = %v, want %v", in, got, want)
	}
}

func TestMondayOf_Idempotent(t *testing.T) {
	in := time.Date(2024, time.July, 11, 9, 30, 0, 0, time.UTC)
	once := MondayOf(in)
	if twice := MondayOf(once); !twice.Equal(once) {
		t.Errorf("MondayOf not idempotent: %v then %v", once, twice)
	}
}
