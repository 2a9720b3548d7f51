package jobs

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakeAuditor struct {
	repaired int
	err      error
	calls    int
}

func (f *fakeAuditor) AuditCurrentQty(context.Context) (int, error) {
	f.calls++
	return f.repaired, f.err
}

func TestAddRejectsBadSchedule(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewScheduler(log)

	if err := s.Add(StockAudit("not a schedule", &fakeAuditor{}, log)); err == nil {
		t.Fatal("expected error for malformed schedule")
	}
	if err := s.Add(StockAudit("0 3 * * *", &fakeAuditor{}, log)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunLogsOutcome(t *testing.T) {
	log, hook := test.NewNullLogger()
	s := NewScheduler(log)

	auditor := &fakeAuditor{repaired: 2}
	s.run(StockAudit("@daily", auditor, log))
	if auditor.calls != 1 {
		t.Fatalf("expected 1 audit call, got %d", auditor.calls)
	}
	if hook.LastEntry() == nil || hook.LastEntry().Message != "[Jobs] run finished" {
		t.Errorf("unexpected last log entry: %+v", hook.LastEntry())
	}

	hook.Reset()
	s.run(StockAudit("@daily", &fakeAuditor{err: errors.New("db down")}, log))
	if e := hook.LastEntry(); e == nil || e.Level != logrus.ErrorLevel {
		t.Errorf("expected an error entry, got %+v", e)
	}
}
