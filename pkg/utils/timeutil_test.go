package utils

import (
	"testing"
	"time"
)

func TestNowIST(t *testing.T) {
	now := NowIST()
	if now.Location().String() != "Asia/Kolkata" && now.Location().String() != "IST" {
		t.Errorf("NowIST() location = %s, want Asia/Kolkata or IST", now.Location().String())
	}
}

func TestToIST(t *testing.T) {
	utc := time.Date(2024, 5, 2, 18, 45, 0, 0, time.UTC)
	ist := ToIST(utc)
	if ist.Day() != 3 || ist.Hour() != 0 || ist.Minute() != 15 {
		t.Errorf("ToIST(%v) = %v, want 03 May 00:15", utc, ist)
	}
}

func TestParseDateIST(t *testing.T) {
	d, err := ParseDateIST("2024-05-02")
	if err != nil {
		t.Fatalf("ParseDateIST: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.May || d.Day() != 2 {
		t.Errorf("ParseDateIST = %v", d)
	}
	if _, err := ParseDateIST("02/05/2024"); err == nil {
		t.Error("expected error for wrong layout")
	}
}

func TestFormatIST(t *testing.T) {
	ts := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	if got := FormatDateIST(ts); got != "02 May 2024" {
		t.Errorf("FormatDateIST = %q", got)
	}
	if got := FormatDateTimeIST(ts); got != "02 May 2024, 03:30 PM IST" {
		t.Errorf("FormatDateTimeIST = %q", got)
	}
	if FormatDateIST(time.Time{}) != "" || FormatDateTimeIST(time.Time{}) != "" {
		t.Error("zero time should format as empty string")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1.5m"},
		{3 * time.Hour, "3.0h"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
