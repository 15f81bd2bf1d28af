// Package flow holds the linear step machine the client walks through:
// hero, repo-input, preferences, processing, preview, success.
package flow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jask/frontfrend/internal/prefs"
	"github.com/jask/frontfrend/internal/workflow"
)

// Step is one screen in the sequence.
type Step string

const (
	StepHero        Step = "hero"
	StepRepoInput   Step = "repo-input"
	StepPreferences Step = "preferences"
	StepProcessing  Step = "processing"
	StepPreview     Step = "preview"
	StepSuccess     Step = "success"
)

var (
	ErrRepoURLRequired   = errors.New("repository URL required")
	ErrInvalidRepo       = errors.New("invalid repository: enter a GitHub repository URL")
	ErrIllegalTransition = errors.New("illegal step transition")
)

// Session is the transient state of one walk through the steps.
type Session struct {
	Step        Step
	RepoURL     string
	Preferences *prefs.Preferences
	Progress    float64
	Results     *workflow.Results
}

// New returns a session on the hero step.
func New() *Session {
	return &Session{Step: StepHero}
}

func (s *Session) require(from ...Step) error {
	for _, f := range from {
		if s.Step == f {
			return nil
		}
	}
	return fmt.Errorf("%w: from %s", ErrIllegalTransition, s.Step)
}

func (s *Session) GetStarted() error {
	if err := s.require(StepHero); err != nil {
		return err
	}
	s.Step = StepRepoInput
	return nil
}

// SubmitRepo validates url and moves on to preferences.
func (s *Session) SubmitRepo(url string) error {
	if err := s.require(StepRepoInput); err != nil {
		return err
	}
	url, err := ValidateRepoURL(url)
	if err != nil {
		return err
	}
	s.RepoURL = url
	s.Step = StepPreferences
	return nil
}

// SubmitPreferences records p and enters processing with a fresh progress bar.
func (s *Session) SubmitPreferences(p prefs.Preferences) error {
	if err := s.require(StepPreferences); err != nil {
		return err
	}
	s.Preferences = &p
	s.Progress = 0
	s.Results = nil
	s.Step = StepProcessing
	return nil
}

// UpdateProgress never moves the bar backwards.
func (s *Session) UpdateProgress(pct float64) error {
	if err := s.require(StepProcessing); err != nil {
		return err
	}
	pct = min(max(pct, 0), 100)
	if pct > s.Progress {
		s.Progress = pct
	}
	return nil
}

func (s *Session) Complete(res workflow.Results) error {
	if err := s.require(StepProcessing); err != nil {
		return err
	}
	s.Results = &res
	s.Progress = 100
	s.Step = StepPreview
	return nil
}

// Fail returns to preferences after a failed start, poll or fetch.
func (s *Session) Fail() error {
	if err := s.require(StepProcessing, StepPreview); err != nil {
		return err
	}
	s.Progress = 0
	s.Results = nil
	s.Step = StepPreferences
	return nil
}

func (s *Session) CreatePR() error {
	if err := s.require(StepPreview); err != nil {
		return err
	}
	s.Step = StepSuccess
	return nil
}

// StartNew discards everything and returns to the hero step.
func (s *Session) StartNew() {
	*s = Session{Step: StepHero}
}

// Back moves to the previous screen where one exists.
func (s *Session) Back() error {
	switch s.Step {
	case StepRepoInput:
		s.Step = StepHero
	case StepPreferences:
		s.Step = StepRepoInput
	case StepPreview:
		s.Step = StepPreferences
	default:
		return fmt.Errorf("%w: no previous step from %s", ErrIllegalTransition, s.Step)
	}
	return nil
}

// ValidateRepoURL trims raw and checks it names a GitHub repository.
func ValidateRepoURL(raw string) (string, error) {
	url := strings.TrimSpace(raw)
	if url == "" {
		return "", ErrRepoURLRequired
	}
	if !strings.Contains(url, "github.com") {
		return "", ErrInvalidRepo
	}
	return url, nil
}

// RepoName is the last path segment of url, or "repository".
func RepoName(url string) string {
	parts := strings.Split(url, "/")
	if name := parts[len(parts)-1]; name != "" {
		return name
	}
	return "repository"
}
