package feedapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

func TestBreakerClient_OpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	bc := NewBreakerClient(NewClient(ts.URL, ts.Client()), BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute})
	for i := 0; i < 2; i++ {
		if _, err := bc.Recommend(context.Background()); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	if bc.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", bc.State())
	}

	_, err := bc.Recommend(context.Background())
	if !IsTransportError(err) {
		t.Fatalf("expected TransportError while open, got %v", err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState in chain, got %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("open breaker must not reach the server, hits=%d", got)
	}
}

func TestBreakerClient_PassesThroughSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/status":
			_, _ = w.Write([]byte(`{"paths_loaded":5,"liked_count":1}`))
		case "/feedback":
			w.WriteHeader(http.StatusOK)
		default:
			_, _ = w.Write([]byte(`{"recommendations":[{"path":"a.png","index":1}]}`))
		}
	}))
	defer ts.Close()

	bc := NewBreakerClient(NewClient(ts.URL, ts.Client()), DefaultBreakerSettings())
	status, err := bc.Status(context.Background())
	if err != nil || status.PathsLoaded != 5 {
		t.Fatalf("unexpected status: %+v err=%v", status, err)
	}
	recs, err := bc.Recommend(context.Background())
	if err != nil || len(recs) != 1 {
		t.Fatalf("unexpected recommendations: %+v err=%v", recs, err)
	}
	if _, err := bc.SendFeedback(context.Background(), 1, ActionLike); err != nil {
		t.Fatalf("SendFeedback returned error: %v", err)
	}
	if bc.ImageURL(1) != ts.URL+"/image/1" {
		t.Fatalf("unexpected image url: %s", bc.ImageURL(1))
	}
}

func TestBreakerClient_IgnoresCallerErrors(t *testing.T) {
	bc := NewBreakerClient(NewClient("http://127.0.0.1:1", nil), BreakerSettings{MaxFailures: 1, OpenTimeout: time.Minute})
	for i := 0; i < 3; i++ {
		if _, err := bc.SendFeedback(context.Background(), 1, Action("bogus")); err == nil {
			t.Fatal("expected error for bogus action")
		}
	}
	if bc.State() != gobreaker.StateClosed {
		t.Fatalf("caller errors must not open the breaker, state=%s", bc.State())
	}
}

func TestBreakerClient_ImageFailuresDoNotBlockFeedback(t *testing.T) {
	var feedbackHits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/feedback" {
			feedbackHits.Add(1)
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	bc := NewBreakerClient(NewClient(ts.URL, ts.Client()), BreakerSettings{MaxFailures: 5, OpenTimeout: time.Minute})
	for i := 0; i < 5; i++ {
		if _, err := bc.FetchImage(context.Background(), i); err == nil {
			t.Fatalf("image %d: expected 404 error", i)
		}
	}
	if bc.State() != gobreaker.StateClosed {
		t.Fatalf("image failures must not open the breaker, state=%s", bc.State())
	}
	if _, err := bc.SendFeedback(context.Background(), 1, ActionLike); err != nil {
		t.Fatalf("SendFeedback returned error: %v", err)
	}
	if feedbackHits.Load() != 1 {
		t.Fatalf("expected feedback to reach the server, hits=%d", feedbackHits.Load())
	}
}

func TestBreakerClient_ClientErrorsDoNotOpen(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer ts.Close()

	bc := NewBreakerClient(NewClient(ts.URL, ts.Client()), BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute})
	for i := 0; i < 4; i++ {
		_, err := bc.SendFeedback(context.Background(), 1, ActionSkip)
		if !IsTransportError(err) || errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("call %d: expected a plain 400 TransportError, got %v", i, err)
		}
	}
	if bc.State() != gobreaker.StateClosed {
		t.Fatalf("4xx responses must not open the breaker, state=%s", bc.State())
	}
}
