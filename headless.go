package main

import (
	"github.com/milk9111/twobd/ecs/system"
	"github.com/milk9111/twobd/render"
	"go.uber.org/zap"
)

const headlessDelta = 1.0 / 60

// runHeadless steps and draws frames against a recording device, for
// profiling and CI where no window is available.
func runHeadless(log *zap.Logger, v *Viewer, frames, width, height int) (system.FrameStats, error) {
	rec := render.NewRecorder()
	var total system.FrameStats
	for i := range frames {
		if err := v.Step(nil, headlessDelta); err != nil {
			return total, err
		}
		rec.Reset()
		stats, err := v.Draw(rec, width, height)
		if err != nil {
			return total, err
		}
		total.Add(stats)
		log.Debug("frame",
			zap.Int("frame", i),
			zap.Int("draws", stats.DrawCalls),
			zap.Int("skipped", stats.Skipped),
			zap.Int("binds", stats.ShaderBinds),
			zap.Int("applies", stats.MaterialApplies),
			zap.Int("uploaded", rec.Uploaded()))
	}
	log.Info("headless run finished",
		zap.String("scene", v.reg.CurrentName()),
		zap.Int("frames", frames),
		zap.Int("draws", total.DrawCalls),
		zap.Int("binds", total.ShaderBinds),
		zap.Int("applies", total.MaterialApplies))
	return total, nil
}
