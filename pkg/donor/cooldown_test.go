package donor

import (
	"testing"
	"time"

	"github.com/lifelink-health/portal/pkg/common/models"
)

func TestReapplyGateBlocksInsideCoolDown(t *testing.T) {
	gate := NewReapplyGate(15)
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	rejectedAt := now.Add(-10 * 24 * time.Hour)

	record := models.MedicalRecord{
		Status:     models.RecordRejected,
		VerifiedAt: &rejectedAt,
	}

	allowed, days := gate.Check(record, now)
	if allowed {
		t.Fatal("expected reapplication to be blocked at ten days")
	}
	if days != 5 {
		t.Fatalf("expected 5 days remaining, got %d", days)
	}
}

func TestReapplyGateAllowsAfterCoolDown(t *testing.T) {
	gate := NewReapplyGate(15)
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	rejectedAt := now.Add(-16 * 24 * time.Hour)

	record := models.MedicalRecord{
		Status:     models.RecordRejected,
		VerifiedAt: &rejectedAt,
	}

	allowed, days := gate.Check(record, now)
	if !allowed {
		t.Fatal("expected reapplication to be allowed after sixteen days")
	}
	if days != 0 {
		t.Fatalf("expected 0 days remaining, got %d", days)
	}
}

func TestReapplyGateFallsBackToSubmissionTime(t *testing.T) {
	gate := NewReapplyGate(15)
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

	record := models.MedicalRecord{
		Status:      models.RecordRejected,
		SubmittedAt: now.Add(-20 * 24 * time.Hour),
	}

	allowed, _ := gate.Check(record, now)
	if !allowed {
		t.Fatal("expected submission time fallback to allow reapplication")
	}
}

func TestReapplyGatePartialDaysRoundUp(t *testing.T) {
	gate := NewReapplyGate(15)
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	rejectedAt := now.Add(-14*24*time.Hour - 12*time.Hour)

	record := models.MedicalRecord{
		Status:     models.RecordRejected,
		VerifiedAt: &rejectedAt,
	}

	allowed, days := gate.Check(record, now)
	if allowed {
		t.Fatal("expected half a day remaining to still block")
	}
	if days != 1 {
		t.Fatalf("expected 1 day remaining, got %d", days)
	}
}

func TestReapplyGateIgnoresNonRejectedRecords(t *testing.T) {
	gate := NewReapplyGate(15)
	now := time.Now()

	for _, status := range []models.RecordStatus{models.RecordPending, models.RecordApproved} {
		allowed, _ := gate.Check(models.MedicalRecord{Status: status, SubmittedAt: now}, now)
		if allowed {
			t.Fatalf("status %q must not pass the reapply gate", status)
		}
	}
}

func TestReapplyGateDefaultWindow(t *testing.T) {
	gate := NewReapplyGate(0)
	if gate.CoolDown != 15*24*time.Hour {
		t.Fatalf("expected default fifteen day window, got %v", gate.CoolDown)
	}
}
