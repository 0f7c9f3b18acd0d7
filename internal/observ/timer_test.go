package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()

	p1 := timer.Begin("parse manifest")
	time.Sleep(time.Millisecond)
	timer.End(p1, "template-info.json")

	p2 := timer.Begin("run rules")
	time.Sleep(time.Millisecond)
	timer.End(p2, "3 diagnostics")

	report := timer.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %d", len(report.Phases))
	}
	if report.Phases[0].Name != "parse manifest" || report.Phases[1].Name != "run rules" {
		t.Fatalf("phase names = %+v", report.Phases)
	}
	if report.Phases[0].Note != "template-info.json" {
		t.Fatalf("note = %q", report.Phases[0].Note)
	}

	var sum float64
	for _, p := range report.Phases {
		if p.DurationMS <= 0 {
			t.Fatalf("phase %q has no duration", p.Name)
		}
		sum += p.DurationMS
	}
	if diff := report.TotalMS - sum; diff < -0.01 || diff > 0.01 {
		t.Fatalf("total = %.2f, phases sum to %.2f", report.TotalMS, sum)
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	timer := NewTimer()
	timer.End(-1, "")
	timer.End(5, "")
	if got := timer.Report(); len(got.Phases) != 0 {
		t.Fatalf("report = %+v", got)
	}
}

func TestReportSummary(t *testing.T) {
	timer := NewTimer()
	idx := timer.Begin("run rules")
	timer.End(idx, "2 diagnostics")

	summary := timer.Summary()
	if !strings.HasPrefix(summary, "timings:\n") {
		t.Fatalf("summary = %q", summary)
	}
	for _, want := range []string{"run rules", "// 2 diagnostics", "total"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	report := NewTimer().Report()
	if report.TotalMS != 0 || len(report.Phases) != 0 {
		t.Fatalf("report = %+v", report)
	}
}
