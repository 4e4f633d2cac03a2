package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/postcareplus/postcare-sms/internal/scoring"
)

// HTTPModelScorer calls the ML model service over HTTP. The service owns
// the model internals; this adapter enforces the output contract
// (recovery score clamped to [0,1], severity non-negative).
type HTTPModelScorer struct {
	serviceURL string
	client     *http.Client
}

func NewHTTPModelScorer(serviceURL string) scoring.Scorer {
	return &HTTPModelScorer{
		serviceURL: serviceURL,
		client:     &http.Client{},
	}
}

type scoreRequest struct {
	Pain         float64 `json:"pain"`
	WoundHealing float64 `json:"wound_healing"`
	TemperatureC float64 `json:"temperature_c"`
	Mobility     float64 `json:"mobility"`
}

type scoreResponse struct {
	Severity       float64  `json:"severity"`
	RecoveryScore  float64  `json:"recovery_score"`
	Alerts         []string `json:"alerts"`
	NeedsAttention bool     `json:"needs_attention"`
}

func (s *HTTPModelScorer) Score(ctx context.Context, v scoring.Vitals) (scoring.Result, error) {
	b, err := json.Marshal(scoreRequest{
		Pain:         v.Pain,
		WoundHealing: v.WoundHealing,
		TemperatureC: v.TemperatureC,
		Mobility:     v.Mobility,
	})
	if err != nil {
		return scoring.Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serviceURL, bytes.NewReader(b))
	if err != nil {
		return scoring.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return scoring.Result{}, fmt.Errorf("scoring service request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return scoring.Result{}, fmt.Errorf("scoring service returned status %d", resp.StatusCode)
	}

	var decoded scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return scoring.Result{}, fmt.Errorf("scoring service response is invalid: %w", err)
	}

	result := scoring.Result{
		Severity:       decoded.Severity,
		RecoveryScore:  clamp01(decoded.RecoveryScore),
		NeedsAttention: decoded.NeedsAttention,
	}
	if result.Severity < 0 {
		slog.Warn("scoring service returned negative severity; clamping to 0", "severity", decoded.Severity)
		result.Severity = 0
	}
	for _, raw := range decoded.Alerts {
		tag := scoring.Tag(raw)
		if !scoring.KnownTag(tag) {
			slog.Warn("scoring service returned unknown alert tag", "tag", raw)
		}
		result.Alerts = append(result.Alerts, tag)
	}
	return result, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
