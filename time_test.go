package gtfs

import (
	"testing"
)

func TestParseTime(t *testing.T) {
	for _, tc := range []struct {
		input  string
		want   int
		wantOk bool
	}{
		{"08:00:00", 8 * 3600, true},
		{"8:05:09", 8*3600 + 5*60 + 9, true},
		{" 8:05:09", 8*3600 + 5*60 + 9, true},
		{"00:00:00", 0, true},
		{"25:30:00", 25*3600 + 30*60, true},
		{"100:00:01", 100*3600 + 1, true},
		{"", 0, false},
		{"08:00", 0, false},
		{"08:00:00:00", 0, false},
		{"08:60:00", 0, false},
		{"08:00:60", 0, false},
		{"-1:00:00", 0, false},
		{"+1:00:00", 0, false},
		{"aa:bb:cc", 0, false},
		{"08::00", 0, false},
		{"999999:59:59", 999999*3600 + 59*60 + 59, true},
		{"1000000:00:00", 0, false},
		{"9999999999999999999:00:00", 0, false},
	} {
		t.Run(tc.input, func(t *testing.T) {
			got, gotOk := ParseTime(tc.input)
			if got != tc.want || gotOk != tc.wantOk {
				t.Errorf("ParseTime(%q) = (%d, %t), want (%d, %t)", tc.input, got, gotOk, tc.want, tc.wantOk)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	for _, tc := range []struct {
		input int
		want  string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{8*3600 + 25*60, "08:25:00"},
		{93000, "25:50:00"},
		{100*3600 + 61, "100:01:01"},
	} {
		if got := FormatTime(tc.input); got != tc.want {
			t.Errorf("FormatTime(%d) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestTimeRoundTrip(t *testing.T) {
	for x := 0; x < 48*3600; x += 37 {
		got, ok := ParseTime(FormatTime(x))
		if !ok || got != x {
			t.Fatalf("ParseTime(FormatTime(%d)) = (%d, %t)", x, got, ok)
		}
	}
	for _, x := range []int{93000, 86400, 86399, 360000} {
		got, ok := ParseTime(FormatTime(x))
		if !ok || got != x {
			t.Errorf("ParseTime(FormatTime(%d)) = (%d, %t)", x, got, ok)
		}
	}
}

func TestExtractHour(t *testing.T) {
	for _, tc := range []struct {
		input  string
		want   int
		wantOk bool
	}{
		{"08:00:00", 8, true},
		{"25:50:00", 25, true},
		{"7:59:59", 7, true},
		{"", 0, false},
		{"0800", 0, false},
		{"x:00:00", 0, false},
		{"1234567:00:00", 0, false},
	} {
		got, gotOk := ExtractHour(tc.input)
		if got != tc.want || gotOk != tc.wantOk {
			t.Errorf("ExtractHour(%q) = (%d, %t), want (%d, %t)", tc.input, got, gotOk, tc.want, tc.wantOk)
		}
	}
}
