package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/models"
)

type fakeDonorSource struct {
	names map[uuid.UUID]string
}

func (f fakeDonorSource) DonorName(ctx context.Context, donorID uuid.UUID) (string, error) {
	return f.names[donorID], nil
}

func (f fakeDonorSource) Snapshot(ctx context.Context, donorID uuid.UUID) (models.MedicalSnapshot, string, string, error) {
	return models.MedicalSnapshot{}, "Kidney", f.names[donorID], nil
}

func TestBuildScheduleGroupsAndResolvesNames(t *testing.T) {
	aliID := uuid.New()
	saraID := uuid.New()
	service := NewService(nil, fakeDonorSource{names: map[uuid.UUID]string{
		aliID:  "Ali Raza",
		saraID: "Sara Khan",
	}}, nil)

	now := time.Now()
	appointments := []models.Appointment{
		{DonorID: aliID, Date: "2025-01-01", Time: "09:00", Bucket: models.BucketPast},
		{DonorID: saraID, Date: now.Format(DateLayout), Time: "10:00", Bucket: models.BucketCurrent},
		{DonorID: aliID, Date: "2030-01-01", Time: "11:00", Bucket: models.BucketUpcoming},
	}

	schedule := service.buildSchedule(context.Background(), appointments, "")
	if len(schedule.Appointments) != 3 {
		t.Fatalf("expected all appointments, got %d", len(schedule.Appointments))
	}
	if schedule.Counts[models.BucketPast] != 1 ||
		schedule.Counts[models.BucketCurrent] != 1 ||
		schedule.Counts[models.BucketUpcoming] != 1 {
		t.Fatalf("unexpected bucket counts %v", schedule.Counts)
	}
	if schedule.Appointments[0].DonorName != "Ali Raza" {
		t.Fatalf("expected donor name resolved, got %q", schedule.Appointments[0].DonorName)
	}
}

func TestBuildScheduleSearchNarrowsListingNotCounts(t *testing.T) {
	aliID := uuid.New()
	saraID := uuid.New()
	service := NewService(nil, fakeDonorSource{names: map[uuid.UUID]string{
		aliID:  "Ali Raza",
		saraID: "Sara Khan",
	}}, nil)

	appointments := []models.Appointment{
		{DonorID: aliID, Date: "2025-01-01", Time: "09:00", Bucket: models.BucketPast},
		{DonorID: saraID, Date: "2030-01-01", Time: "10:00", Bucket: models.BucketUpcoming},
	}

	schedule := service.buildSchedule(context.Background(), appointments, "sara")
	if len(schedule.Appointments) != 1 {
		t.Fatalf("expected one match, got %d", len(schedule.Appointments))
	}
	if schedule.Appointments[0].DonorName != "Sara Khan" {
		t.Fatalf("unexpected match %v", schedule.Appointments[0])
	}
	if schedule.Counts[models.BucketPast] != 1 || schedule.Counts[models.BucketUpcoming] != 1 {
		t.Fatalf("counts must cover the full schedule, got %v", schedule.Counts)
	}

	byDate := service.buildSchedule(context.Background(), appointments, "2030-01")
	if len(byDate.Appointments) != 1 {
		t.Fatalf("expected date search to match, got %d", len(byDate.Appointments))
	}
}
