package joblog

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "jobs.db"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestJobLifecycle(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	id, err := l.Start(ctx, "AB123", "cert.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Finish(ctx, id, "ai_fill", ""); err != nil {
		t.Fatal(err)
	}

	jobs, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs", len(jobs))
	}
	j := jobs[0]
	if j.HeatNumber != "AB123" || j.Stage != "ai_fill" || j.Status != StatusOK {
		t.Fatalf("got %+v", j)
	}
}

func TestJobFailure(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	id, _ := l.Start(ctx, "Z9", "z9.pdf")
	if err := l.Finish(ctx, id, "", "analysis timed out"); err != nil {
		t.Fatal(err)
	}

	jobs, _ := l.Recent(ctx, 1)
	if jobs[0].Status != StatusFailed || jobs[0].Error != "analysis timed out" {
		t.Fatalf("got %+v", jobs[0])
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	l := openTestLog(t)
	ctx := context.Background()

	for _, heat := range []string{"H1", "H2", "H3"} {
		if _, err := l.Start(ctx, heat, heat+".pdf"); err != nil {
			t.Fatal(err)
		}
	}
	jobs, err := l.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 || jobs[0].HeatNumber != "H3" || jobs[1].HeatNumber != "H2" {
		t.Fatalf("got %+v", jobs)
	}
}
