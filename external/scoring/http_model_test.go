package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/postcareplus/postcare-sms/internal/scoring"
)

func testVitals(t *testing.T) scoring.Vitals {
	t.Helper()
	v, err := scoring.NewVitals(6, 7, 37.5, 8, time.Now())
	if err != nil {
		t.Fatalf("failed to build vitals: %v", err)
	}
	return v
}

func TestScore_Success(t *testing.T) {
	var gotReq scoreRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(scoreResponse{
			Severity:       6.5,
			RecoveryScore:  0.55,
			Alerts:         []string{"HIGH_PAIN", "FEVER"},
			NeedsAttention: true,
		})
	}))
	defer server.Close()

	scorer := NewHTTPModelScorer(server.URL)
	result, err := scorer.Score(context.Background(), testVitals(t))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotReq.Pain != 6 || gotReq.WoundHealing != 7 || gotReq.TemperatureC != 37.5 || gotReq.Mobility != 8 {
		t.Fatalf("unexpected request payload: %+v", gotReq)
	}
	if result.Severity != 6.5 || result.RecoveryScore != 0.55 || !result.NeedsAttention {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !result.HasAlert(scoring.TagHighPain) || !result.HasAlert(scoring.TagFever) {
		t.Fatalf("expected alert tags to be preserved: %+v", result.Alerts)
	}
}

func TestScore_ClampsRecoveryScoreAndSeverity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(scoreResponse{Severity: -2, RecoveryScore: 1.7})
	}))
	defer server.Close()

	scorer := NewHTTPModelScorer(server.URL)
	result, err := scorer.Score(context.Background(), testVitals(t))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if result.Severity != 0 {
		t.Fatalf("expected severity clamped to 0, got %g", result.Severity)
	}
	if result.RecoveryScore != 1 {
		t.Fatalf("expected recovery score clamped to 1, got %g", result.RecoveryScore)
	}
}

func TestScore_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	scorer := NewHTTPModelScorer(server.URL)
	if _, err := scorer.Score(context.Background(), testVitals(t)); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestScore_InvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	scorer := NewHTTPModelScorer(server.URL)
	if _, err := scorer.Score(context.Background(), testVitals(t)); err == nil {
		t.Fatal("expected error for malformed response body")
	}
}
