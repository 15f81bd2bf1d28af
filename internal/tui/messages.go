package tui

import (
	"github.com/jask/frontfrend/internal/database/repository"
	"github.com/jask/frontfrend/internal/workflow"
)

type toast struct {
	id    int
	text  string
	isErr bool
}

type toastExpiredMsg struct{ id int }

type errMsg struct{ error }

type recentMsg []repository.Run

type repoAcceptedMsg struct{ url string }

type tokenSavedMsg struct{ token string }

// Workflow messages carry the poll generation they belong to. A message from
// an abandoned run has a stale generation and is dropped.
type (
	startedMsg struct {
		gen   int
		runID string
	}
	pollTickMsg struct{ gen int }
	statusMsg   struct {
		gen  int
		resp workflow.StatusResponse
	}
	resultsMsg struct {
		gen        int
		results    workflow.Results
		preview    string
		previewErr error
	}
	workflowErrMsg struct {
		gen int
		err error
	}
)

type exportedMsg struct {
	dir   string
	paths []string
}
