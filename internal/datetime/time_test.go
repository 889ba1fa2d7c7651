package datetime

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		text    string
		want    TimeRange
		wantErr bool
	}{
		{"5-8 pm", TimeRange{Start: Clock{17, 0}, End: Clock{20, 0}, HasEnd: true}, false},
		{"8 pm-12 am", TimeRange{Start: Clock{20, 0}, End: Clock{0, 0}, HasEnd: true}, false},
		{"7:30 pm", TimeRange{Start: Clock{19, 30}}, false},
		{"9 pm-1 am", TimeRange{Start: Clock{21, 0}, End: Clock{1, 0}, HasEnd: true}, false},
		{"11 am-2 pm", TimeRange{Start: Clock{11, 0}, End: Clock{14, 0}, HasEnd: true}, false},
		{"8pm-11", TimeRange{Start: Clock{20, 0}, End: Clock{23, 0}, HasEnd: true}, false},
		{"7:30 to 10 p.m.", TimeRange{Start: Clock{19, 30}, End: Clock{22, 0}, HasEnd: true}, false},
		{"12 am", TimeRange{Start: Clock{0, 0}}, false},
		{"12 pm", TimeRange{Start: Clock{12, 0}}, false},
		{"noon-3 pm", TimeRange{Start: Clock{12, 0}, End: Clock{15, 0}, HasEnd: true}, false},
		{"Jane Doe (Jazz) 7-9 PM", TimeRange{Start: Clock{19, 0}, End: Clock{21, 0}, HasEnd: true}, false},
		{"garbage", TimeRange{}, true},
		{"21+ show", TimeRange{}, true},
		{"13 pm", TimeRange{}, true},
		{"", TimeRange{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseTimeRange(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrNoTime) {
					t.Errorf("ParseTimeRange(%q) error = %v, want ErrNoTime", tt.text, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeRange(%q) unexpected error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimeRange(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFindTime_Span(t *testing.T) {
	text := "Jane Doe 7-9 pm (free)"
	_, span, err := FindTime(text)
	if err != nil {
		t.Fatalf("FindTime() unexpected error: %v", err)
	}
	if got := text[span[0]:span[1]]; got != "7-9 pm" {
		t.Errorf("FindTime() span = %q, want %q", got, "7-9 pm")
	}

	text = "Brunch at noon"
	_, span, err = FindTime(text)
	if err != nil {
		t.Fatalf("FindTime() unexpected error: %v", err)
	}
	if got := text[span[0]:span[1]]; got != "noon" {
		t.Errorf("FindTime() span = %q, want %q", got, "noon")
	}
}

func TestCompose(t *testing.T) {
	date := time.Date(2025, time.August, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		text      string
		wantStart string
		wantEnd   string
	}{
		{"same day range", "5-8 pm", "2025-08-05T17:00:00-07:00", "2025-08-05T20:00:00-07:00"},
		{"midnight rollover", "8 pm-12 am", "2025-08-05T20:00:00-07:00", "2025-08-06T00:00:00-07:00"},
		{"past midnight", "9 pm-1 am", "2025-08-05T21:00:00-07:00", "2025-08-06T01:00:00-07:00"},
		{"default duration", "7:30 pm", "2025-08-05T19:30:00-07:00", "2025-08-05T21:30:00-07:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := ParseTimeRange(tt.text)
			if err != nil {
				t.Fatalf("ParseTimeRange(%q) unexpected error: %v", tt.text, err)
			}
			start, end := Compose(date, tr)
			if got := start.Format(time.RFC3339); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format(time.RFC3339); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestComposeDefault(t *testing.T) {
	start, end := ComposeDefault(time.Date(2025, time.December, 12, 0, 0, 0, 0, time.UTC))
	if got := start.Format(time.RFC3339); got != "2025-12-12T19:00:00-08:00" {
		t.Errorf("start = %s, want 2025-12-12T19:00:00-08:00", got)
	}
	if got := end.Sub(start); got != DefaultDuration {
		t.Errorf("duration = %s, want %s", got, DefaultDuration)
	}
}

func TestZone(t *testing.T) {
	tests := []struct {
		month      time.Month
		wantOffset int
	}{
		{time.January, -8 * 3600},
		{time.February, -8 * 3600},
		{time.March, -7 * 3600},
		{time.August, -7 * 3600},
		{time.November, -7 * 3600},
		{time.December, -8 * 3600},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			_, offset := time.Date(2025, tt.month, 15, 12, 0, 0, 0, Zone(tt.month)).Zone()
			if offset != tt.wantOffset {
				t.Errorf("Zone(%s) offset = %d, want %d", tt.month, offset, tt.wantOffset)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    TimePolicy
		wantErr bool
	}{
		{"reject", PolicyReject, false},
		{"", PolicyReject, false},
		{"DEFAULT", PolicyDefault, false},
		{"guess", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePolicy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePolicy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestISOClock(t *testing.T) {
	tests := []struct {
		text   string
		want   Clock
		wantOK bool
	}{
		{"2025-08-05T19:30:00-07:00", Clock{19, 30}, true},
		{"2025-08-05 08:05", Clock{8, 5}, true},
		{"2025-08-05", Clock{}, false},
		{"7 pm", Clock{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ISOClock(tt.text)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ISOClock(%q) = %v, %v; want %v, %v", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
