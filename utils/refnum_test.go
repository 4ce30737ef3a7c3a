package utils

import (
	"testing"
	"time"
)

func TestGenerateReferenceNumber(t *testing.T) {
	cases := []struct {
		serial int
		tag    string
		date   time.Time
		want   string
	}{
		{7, RefTagQuote, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "ARGO-Q007-03-2024"},
		{123, RefTagRfq, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC), "ARGO-R123-11-2023"},
		{1, RefTagQuote, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), "ARGO-Q001-01-2026"},
		// Serial past three digits widens instead of truncating.
		{1042, RefTagQuote, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "ARGO-Q1042-06-2024"},
	}
	for _, tc := range cases {
		if got := GenerateReferenceNumber(tc.serial, tc.tag, tc.date); got != tc.want {
			t.Errorf("GenerateReferenceNumber(%d, %q, %v) = %q, want %q", tc.serial, tc.tag, tc.date, got, tc.want)
		}
	}
}
