package chime

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// FPSMonitor is a node that reports the frame and tick rates every Interval
// seconds of simulated time.
type FPSMonitor struct {
	NodeBase

	// Interval between reports, in seconds.
	Interval float32
	OnReport func(fps, tps float64)

	elapsed float32
	measure func() (fps, tps float64)
}

// NewFPSMonitor creates a monitor reporting every half second.
func NewFPSMonitor(name string, report func(fps, tps float64)) *FPSMonitor {
	m := &FPSMonitor{
		Interval: 0.5,
		OnReport: report,
		measure:  func() (float64, float64) { return ebiten.ActualFPS(), ebiten.ActualTPS() },
	}
	m.Init(m, name, "FPSMonitor")
	return m
}

// NewFPSTitle creates a monitor that appends the rates to the window title.
func NewFPSTitle(title string) *FPSMonitor {
	return NewFPSMonitor("FPS", func(fps, tps float64) {
		ebiten.SetWindowTitle(fmt.Sprintf("%s - FPS: %.1f TPS: %.1f", title, fps, tps))
	})
}

// Simulate reports once Interval has elapsed, then simulates the children.
func (m *FPSMonitor) Simulate(dt float32) {
	m.elapsed += dt
	if m.elapsed >= m.Interval {
		m.elapsed = 0
		if m.OnReport != nil {
			m.OnReport(m.measure())
		}
	}
	m.NodeBase.Simulate(dt)
}
