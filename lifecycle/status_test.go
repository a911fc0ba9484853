package lifecycle

import (
	"testing"
	"time"

	"gatepass/models"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	sched := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	started := now.Add(-20 * time.Minute)
	processed := now.Add(-5 * time.Minute)

	cases := []struct {
		name  string
		visit models.Visit
		want  Status
	}{
		{
			name:  "fresh walk-in is pending",
			visit: models.Visit{},
			want:  StatusPending,
		},
		{
			name:  "appointment before its slot is pending",
			visit: models.Visit{ScheduledDate: &sched, ScheduledTime: "15:00"},
			want:  StatusPending,
		},
		{
			name:  "appointment past its slot is overdue",
			visit: models.Visit{ScheduledDate: &sched, ScheduledTime: "13:30"},
			want:  StatusOverdue,
		},
		{
			name:  "appointment exactly at its slot is overdue",
			visit: models.Visit{ScheduledDate: &sched, ScheduledTime: "14:00"},
			want:  StatusOverdue,
		},
		{
			name:  "processing beats overdue",
			visit: models.Visit{ScheduledDate: &sched, ScheduledTime: "13:30", ProcessingStartedTime: &started},
			want:  StatusProcessing,
		},
		{
			name:  "processed beats processing",
			visit: models.Visit{ProcessingStartedTime: &started, OfficeProcessedTime: &processed},
			want:  StatusProcessed,
		},
		{
			name:  "processed beats overdue",
			visit: models.Visit{ScheduledDate: &sched, ScheduledTime: "13:30", OfficeProcessedTime: &processed},
			want:  StatusProcessed,
		},
		{
			name:  "malformed schedule never goes overdue",
			visit: models.Visit{ScheduledDate: &sched, ScheduledTime: "1 pm"},
			want:  StatusPending,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveStatus(&tc.visit, now); got != tc.want {
				t.Errorf("DeriveStatus = %s, want %s", got, tc.want)
			}
		})
	}
}
