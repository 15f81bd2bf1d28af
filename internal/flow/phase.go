package flow

import "math"

// Phase is a named stage shown while the job is processing.
type Phase struct {
	Name string
	Icon string
}

var Phases = []Phase{
	{Name: "Analyzing Repository", Icon: "⎇"},
	{Name: "Detecting UI Components", Icon: "</>"},
	{Name: "Generating Improvements", Icon: "✦"},
	{Name: "Optimizing Code", Icon: "⚡"},
	{Name: "Finalizing Changes", Icon: "✔"},
}

// PhaseIndex maps overall progress onto Phases.
func PhaseIndex(progress float64) int {
	idx := int(math.Floor(progress / 100 * float64(len(Phases))))
	return min(max(idx, 0), len(Phases)-1)
}

// PhaseProgress is the percentage through the current 20% band.
func PhaseProgress(progress float64) float64 {
	band := 100 / float64(len(Phases))
	return math.Mod(max(progress, 0), band) / band * 100
}
