package export

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimestamp_WithMicroseconds(t *testing.T) {
	got, err := ParseTimestamp("2021-05-01 12:00:00.123456+00:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got.Nanosecond() != 0 {
		t.Errorf("expected microseconds to be dropped, got %dns", got.Nanosecond())
	}
}

func TestParseTimestamp_WithoutMicroseconds(t *testing.T) {
	got, err := ParseTimestamp("2021-05-01 12:00:00+00:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseTimestamp_DoesNotRound(t *testing.T) {
	got, err := ParseTimestamp("2021-05-01 12:00:59.999999+00:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Second() != 59 || got.Minute() != 0 {
		t.Errorf("expected 12:00:59, got %s", got.Format(timestampLayout))
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	cases := []string{
		"2021-05-01 12:00:00+02:00",
		"2021-05-01T12:00:00Z",
		"2021-05-01 12:00:00.123+00:00",
		"",
		"yesterday",
	}
	for _, raw := range cases {
		_, err := ParseTimestamp(raw)
		if err == nil {
			t.Errorf("ParseTimestamp(%q): expected error", raw)
			continue
		}
		if !errors.Is(err, ErrTimestampFormat) {
			t.Errorf("ParseTimestamp(%q): expected ErrTimestampFormat, got %v", raw, err)
		}
	}
}
