package workflow

import (
	"context"
	"time"
)

const (
	DefaultInterval = 2 * time.Second
	DefaultStep     = 5.0

	// progressCeiling holds the bar short of full until the job reports completion.
	progressCeiling = 95.0
	perMessage      = 20.0
)

// Update is reported after every status poll.
type Update struct {
	Status   StatusResponse
	Progress float64
}

// Poller polls the status endpoint until the job reaches a terminal state.
type Poller struct {
	Client   *Client
	Interval time.Duration
	Step     float64
}

// Run polls once immediately, then on every tick. It returns the final status
// on completion, a *JobError when the job failed, the first request error, or
// ctx.Err() when cancelled. onUpdate may be nil.
func (p *Poller) Run(ctx context.Context, onUpdate func(Update)) (StatusResponse, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	step := p.Step
	if step <= 0 {
		step = DefaultStep
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	progress := 0.0
	for {
		st, err := p.Client.Status(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return StatusResponse{}, ctx.Err()
			}
			return StatusResponse{}, err
		}
		progress = EstimateProgress(progress, st, step)
		if onUpdate != nil {
			onUpdate(Update{Status: st, Progress: progress})
		}
		switch st.Status {
		case StatusCompleted:
			return st, nil
		case StatusError:
			return st, &JobError{Message: st.Message}
		}

		select {
		case <-ctx.Done():
			return StatusResponse{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// EstimateProgress derives a monotonic percentage from a status poll. The
// backend reports no percentage, so processing advances by step per poll or
// by the number of phase messages seen, whichever is further, capped below 100.
func EstimateProgress(prev float64, st StatusResponse, step float64) float64 {
	switch st.Status {
	case StatusCompleted:
		return 100
	case StatusError:
		return prev
	}
	next := max(prev+step, float64(len(st.Messages))*perMessage)
	if next > progressCeiling {
		next = progressCeiling
	}
	return max(next, prev)
}
