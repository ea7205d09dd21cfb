package server

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/bunge-labs/billbot/internal/kb"
	"github.com/bunge-labs/billbot/models"
)

func TestIsDue(t *testing.T) {
	halfHour := time.Now().Add(-30 * time.Minute)
	twoHours := time.Now().Add(-2 * time.Hour)
	sevenHours := time.Now().Add(-7 * time.Hour)
	justNow := time.Now()

	if !isDue("@hourly", nil) {
		t.Fatal("never-run schedule must be due")
	}
	if isDue("@hourly", &halfHour) {
		t.Fatal("@hourly must not be due after 30m")
	}
	if !isDue("@hourly", &twoHours) {
		t.Fatal("@hourly must be due after 2h")
	}
	if isDue("@daily", &twoHours) {
		t.Fatal("@daily must not be due after 2h")
	}

	if !isDue("0 */6 * * *", nil) {
		t.Fatal("never-run cron schedule must be due")
	}
	if !isDue("0 */6 * * *", &sevenHours) {
		t.Fatal("6-hour cron must be due after 7h")
	}
	if isDue("0 */6 * * *", &justNow) {
		t.Fatal("cron must not be due immediately after a run")
	}

	if !isDue("not a cron spec", nil) {
		t.Fatal("invalid spec never run must be due")
	}
	if isDue("not a cron spec", &twoHours) {
		t.Fatal("invalid spec falls back to @daily")
	}
}

type staticSource struct {
	bills []models.BillRecord
}

func (s staticSource) ListBills(ctx context.Context) ([]models.BillRecord, error) {
	return s.bills, nil
}

func TestTickSweepsWhenDue(t *testing.T) {
	ix, err := kb.NewMemOnly()
	if err != nil {
		t.Fatalf("NewMemOnly: %v", err)
	}
	defer ix.Close()

	src := staticSource{bills: []models.BillRecord{
		{ID: 1, Title: "finance_bill_2023.pdf", TextContent: "tax"},
		{ID: 2, Title: "water_bill_2021.pdf", TextContent: "water"},
	}}
	logger := log.New(io.Discard, "", 0)
	s := &SyncScheduler{
		Sync:     kb.NewSynchronizer(src, ix, logger),
		CronSpec: "@hourly",
		Logger:   logger,
	}

	s.tick()
	if count, _ := ix.Count(); count != 2 {
		t.Fatalf("expected 2 indexed bills after sweep, got %d", count)
	}
	if s.lastRun == nil {
		t.Fatal("tick must record the run time")
	}

	// A second tick right away is not due yet.
	first := *s.lastRun
	s.tick()
	if !s.lastRun.Equal(first) {
		t.Fatal("tick must skip a sweep that is not due")
	}
}
