package appointment

import (
	"testing"
	"time"

	"github.com/lifelink-health/portal/pkg/common/models"
)

func TestParseSlot(t *testing.T) {
	slot, err := ParseSlot("2025-07-01", "14:30")
	if err != nil {
		t.Fatalf("expected valid slot, got %v", err)
	}
	if slot.Hour() != 14 || slot.Minute() != 30 {
		t.Fatalf("unexpected slot time %v", slot)
	}

	for _, bad := range [][2]string{
		{"2025-13-01", "14:30"},
		{"2025-07-01", "25:00"},
		{"tomorrow", "14:30"},
		{"", ""},
	} {
		if _, err := ParseSlot(bad[0], bad[1]); err == nil {
			t.Fatalf("expected error for slot %q %q", bad[0], bad[1])
		}
	}
}

func TestBucketFor(t *testing.T) {
	now := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		date string
		tod  string
		want models.TimeBucket
	}{
		{"2025-07-14", "09:00", models.BucketPast},
		{"2025-07-15", "08:00", models.BucketCurrent},
		{"2025-07-15", "23:00", models.BucketCurrent},
		{"2025-07-16", "09:00", models.BucketUpcoming},
		{"2024-12-31", "09:00", models.BucketPast},
	}

	for _, tc := range cases {
		got := BucketFor(tc.date, tc.tod, now)
		if got != tc.want {
			t.Fatalf("BucketFor(%s %s) = %s, want %s", tc.date, tc.tod, got, tc.want)
		}
	}
}

func TestHasConflict(t *testing.T) {
	existing := []models.Appointment{
		{Date: "2025-07-15", Time: "10:00"},
		{Date: "2025-07-16", Time: "11:00"},
	}

	if !HasConflict(existing, "2025-07-15", "10:00") {
		t.Fatal("expected conflict on occupied slot")
	}
	if HasConflict(existing, "2025-07-15", "10:30") {
		t.Fatal("expected no conflict on free slot")
	}
	if HasConflict(nil, "2025-07-15", "10:00") {
		t.Fatal("expected no conflict with no appointments")
	}
}
