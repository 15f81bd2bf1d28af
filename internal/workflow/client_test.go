package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/frontfrend/internal/prefs"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", srv.Client())
}

func TestStartSendsRepoAndPreferences(t *testing.T) {
	var got map[string]any
	var auth, contentType string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, pathStart, r.URL.Path)
		contentType = r.Header.Get("Content-Type")
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"message":"Workflow started"}`))
	}))
	c.Token = "ghp_test"

	p := prefs.Default()
	p.AdditionalDetails = "sticky navbar"
	require.NoError(t, c.Start(context.Background(), "https://github.com/acme/site", p))

	require.Equal(t, "application/json", contentType)
	require.Equal(t, "Bearer ghp_test", auth)
	require.Equal(t, "https://github.com/acme/site", got["repo_url"])
	up := got["user_preferences"].(map[string]any)
	require.Equal(t, []any{"ui-cleanup"}, up["improvements"])
	require.Equal(t, "neutral", up["theme"])
	require.Equal(t, "balanced", up["priority"])
	require.Equal(t, "sticky navbar", up["additionalDetails"])
}

func TestStartSendsEmptyImprovementsAsArray(t *testing.T) {
	var raw map[string]json.RawMessage
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserPreferences map[string]json.RawMessage `json:"user_preferences"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		raw = body.UserPreferences
	}))
	require.NoError(t, c.Start(context.Background(), "https://github.com/acme/site", prefs.Preferences{Theme: "dark", Priority: "balanced"}))
	require.JSONEq(t, `[]`, string(raw["improvements"]))
}

func TestStatusDecodesAndRejectsUnknownState(t *testing.T) {
	state := `{"status":"processing","messages":["Fetching Git Tree"]}`
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, pathStatus, r.URL.Path)
		_, _ = w.Write([]byte(state))
	}))

	st, err := c.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusProcessing, st.Status)
	require.Equal(t, "Fetching Git Tree", st.Latest())

	state = `{"status":"paused","messages":[]}`
	_, err = c.Status(context.Background())
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestNon2xxBecomesAPIError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pathStart:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"repo_url is required"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>upstream down</html>"))
		}
	}))

	err := c.Start(context.Background(), "", prefs.Default())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "start", apiErr.Op)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "repo_url is required", apiErr.Message)

	_, err = c.Results(context.Background())
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestResultsAcceptsStringAndObjectImprovements(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, pathResults, r.URL.Path)
		_, _ = w.Write([]byte(`{
			"improvements": [
				"UI/UX improvements applied.",
				{"type":"Accessibility","description":"Added ARIA labels","impact":"Medium"}
			],
			"files": [{"path":"index.html","before":"<div>","after":"<header>"}]
		}`))
	}))

	res, err := c.Results(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Improvements, 2)
	require.Equal(t, "UI/UX improvements applied.", res.Improvements[0].String())
	require.Equal(t, "Accessibility: Added ARIA labels (Medium)", res.Improvements[1].String())
	require.Equal(t, []FileChange{{Path: "index.html", Before: "<div>", After: "<header>"}}, res.Files)
}

func TestLivePreviewReturnsRawHTML(t *testing.T) {
	doc := "<!doctype html><html><body><h1>Hi</h1></body></html>"
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, pathPreview, r.URL.Path)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(doc))
	}))

	got, err := c.LivePreview(context.Background())
	require.NoError(t, err)
	require.Equal(t, doc, got)
}

func TestTransportErrorIsWrappedWithOperation(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL, nil)

	_, err := c.Status(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status:")
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
}

func TestRequestsHonourContext(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Status(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCollectFetchesResultsAndPreview(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(pathResults, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"improvements":["a"],"files":[{"path":"x.html","before":"","after":"<p>"}]}`))
	})
	mux.HandleFunc(pathPreview, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	})
	c := newTestClient(t, mux)

	out, err := c.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Results.Files, 1)
	require.Equal(t, "<html></html>", out.Preview)
	require.NoError(t, out.PreviewErr)
}

func TestCollectToleratesPreviewFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(pathResults, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"improvements":[],"files":[]}`))
	})
	mux.HandleFunc(pathPreview, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no preview", http.StatusNotFound)
	})
	c := newTestClient(t, mux)

	out, err := c.Collect(context.Background())
	require.NoError(t, err)
	var apiErr *APIError
	require.ErrorAs(t, out.PreviewErr, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestCollectFailsOnResultsError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(pathResults, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"No results available"}`, http.StatusNotFound)
	})
	mux.HandleFunc(pathPreview, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	})
	c := newTestClient(t, mux)

	_, err := c.Collect(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "No results available", apiErr.Message)
}
