package donor

import (
	"math"
	"time"

	"github.com/lifelink-health/portal/pkg/common/models"
)

// ReapplyGate reports whether a donor whose latest record was rejected may
// submit again. The cool-down counts from the rejection timestamp when one
// exists, falling back to the submission time for records that predate
// verification timestamps.
type ReapplyGate struct {
	CoolDown time.Duration
}

func NewReapplyGate(days int) ReapplyGate {
	if days <= 0 {
		days = 15
	}
	return ReapplyGate{CoolDown: time.Duration(days) * 24 * time.Hour}
}

// Check returns whether reapplication is allowed and, when blocked, how many
// whole days remain.
func (g ReapplyGate) Check(record models.MedicalRecord, now time.Time) (bool, int) {
	if record.Status != models.RecordRejected {
		return false, 0
	}

	since := record.SubmittedAt
	if record.VerifiedAt != nil {
		since = *record.VerifiedAt
	}

	elapsed := now.Sub(since)
	if elapsed >= g.CoolDown {
		return true, 0
	}

	remaining := g.CoolDown - elapsed
	days := int(math.Ceil(remaining.Hours() / 24))
	return false, days
}
