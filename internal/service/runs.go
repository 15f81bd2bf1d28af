package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/frontfrend/internal/database"
	"github.com/jask/frontfrend/internal/database/repository"
	"github.com/jask/frontfrend/internal/prefs"
	"github.com/jask/frontfrend/internal/workflow"
)

// Starter submits a workflow to the backend.
type Starter interface {
	Start(ctx context.Context, repoURL string, p prefs.Preferences) error
}

// RunService starts workflows and records them in history. Runs may be nil,
// in which case nothing is recorded.
type RunService struct {
	Runs    *repository.RunRepo
	Starter Starter
	Log     *zap.Logger
}

func (s *RunService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Begin records a processing run and starts the workflow. The returned id is
// empty when history is disabled. A failed start marks the run as errored.
func (s *RunService) Begin(ctx context.Context, repoURL string, p prefs.Preferences) (string, error) {
	var id string
	if s.Runs != nil {
		raw, err := json.Marshal(p)
		if err != nil {
			return "", fmt.Errorf("encode preferences: %w", err)
		}
		id = uuid.NewString()
		run := repository.Run{
			ID:          id,
			RepoURL:     repoURL,
			Preferences: string(raw),
			Status:      string(workflow.StatusProcessing),
			StartedAt:   database.Now(),
		}
		if err := s.Runs.Insert(ctx, run); err != nil {
			// history is best effort
			s.logger().Warn("record run", zap.Error(err))
			id = ""
		}
	}

	s.logger().Info("start workflow", zap.String("repo", repoURL), zap.String("run", id))
	if err := s.Starter.Start(ctx, repoURL, p); err != nil {
		s.Finish(ctx, id, workflow.StatusError, err.Error(), 0)
		return id, fmt.Errorf("start workflow: %w", err)
	}
	return id, nil
}

// Finish closes run id with its terminal state. Unknown or empty ids are ignored.
func (s *RunService) Finish(ctx context.Context, id string, status workflow.Status, message string, filesChanged int) {
	if s.Runs == nil || id == "" {
		return
	}
	if err := s.Runs.Finish(ctx, id, string(status), message, filesChanged, database.Now()); err != nil {
		s.logger().Warn("finish run", zap.String("run", id), zap.Error(err))
	}
}

// Recent lists the latest run per repository.
func (s *RunService) Recent(ctx context.Context, limit int) ([]repository.Run, error) {
	if s.Runs == nil {
		return nil, nil
	}
	return s.Runs.Recent(ctx, limit)
}

// History lists the newest runs.
func (s *RunService) History(ctx context.Context, limit int) ([]repository.Run, error) {
	if s.Runs == nil {
		return nil, nil
	}
	return s.Runs.List(ctx, limit)
}
