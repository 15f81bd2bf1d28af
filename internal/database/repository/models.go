package repository

import "time"

// Run is one workflow submission recorded in history.
type Run struct {
	ID           string
	RepoURL      string
	Preferences  string // JSON
	Status       string
	Message      string
	FilesChanged int
	StartedAt    time.Time
	FinishedAt   *time.Time
}
