package schedule

import "testing"

func TestEndTime(t *testing.T) {
	tests := []struct {
		start    string
		duration int
		want     string
	}{
		{"09:00", 30, "09:30"},
		{"9:45", 30, "10:15"},
		{"23:30", 45, "00:15"},
		{"10:00", 0, ""},
		{"25:00", 30, ""},
		{"abc", 30, ""},
	}
	for _, tt := range tests {
		if got := EndTime(tt.start, tt.duration); got != tt.want {
			t.Fatalf("EndTime(%q, %d) = %q, expected %q", tt.start, tt.duration, got, tt.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	if m, ok := ParseClock(" 7:05 "); !ok || m != 425 {
		t.Fatalf("ParseClock(7:05) = %d %v", m, ok)
	}
	for _, bad := range []string{"", "7", "07:60", "24:00", "7:5"} {
		if _, ok := ParseClock(bad); ok {
			t.Fatalf("ParseClock(%q) should fail", bad)
		}
	}
}
