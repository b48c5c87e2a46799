package game

import (
	"log/slog"
)

// flushTelemetry emits flock and perf rows once per stats window.
func (g *Game) flushTelemetry() {
	e := g.engine
	if !e.Ready() || !g.collector.ShouldFlush(e.SimTime()) {
		return
	}

	stats := g.collector.Flush(e.Frames(), e.SimTime(), e.Snapshot())
	perfStats := g.perfCollector.Stats()

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteFlock(stats); err != nil {
			slog.Error("failed to write flock stats", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats.ToCSV(stats.Frame, stats.Particles)); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
