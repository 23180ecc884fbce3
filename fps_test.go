package chime

import "testing"

func TestFPSMonitorReportsEveryInterval(t *testing.T) {
	var reports []float64
	m := NewFPSMonitor("fps", func(fps, tps float64) {
		reports = append(reports, fps, tps)
	})
	m.measure = func() (float64, float64) { return 90, 60 }

	m.Simulate(0.3)
	if len(reports) != 0 {
		t.Fatalf("reported before the interval elapsed: %v", reports)
	}
	m.Simulate(0.3)
	if len(reports) != 2 || reports[0] != 90 || reports[1] != 60 {
		t.Fatalf("reports = %v, want [90 60]", reports)
	}
	m.Simulate(0.3)
	if len(reports) != 2 {
		t.Errorf("elapsed time should reset after a report, got %v", reports)
	}
}

func TestFPSMonitorSimulatesChildren(t *testing.T) {
	var log []string
	m := NewFPSMonitor("fps", nil)
	m.measure = func() (float64, float64) { return 0, 0 }
	m.AddChild(newTracer("child", &log))

	m.Simulate(1)
	if len(log) != 1 || log[0] != "sim child" {
		t.Errorf("log = %v, want [sim child]", log)
	}
}
