package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/postcareplus/postcare-sms/internal/session"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type conversationService interface {
	StartSession(ctx context.Context, patientRef, phone string, info session.PatientInfo) (session.StartResult, error)
	HandleInboundMessage(ctx context.Context, phone, text string) (session.InboundResult, error)
}

type server struct {
	http *http.Server
}

func newServer(addr string, svc conversationService) *server {
	h := &webhookHandler{svc: svc}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sms/inbound", h.handleInbound)
	mux.HandleFunc("POST /sessions", h.handleStartSession)
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	return &server{http: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}}
}

func (s *server) ListenAndServe() error {
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		slog.Error("webhook listener shutdown failed", "error", err)
	}
}

type webhookHandler struct {
	svc conversationService
}

type inboundRequest struct {
	From string `json:"from"`
	Text string `json:"text"`
}

type inboundResponse struct {
	Messages  int  `json:"messages"`
	Escalated bool `json:"escalated"`
}

// handleInbound accepts one patient SMS from the gateway. Replies go
// back out through the gateway, not in this response; a send failure is
// logged but still acknowledged so the gateway does not redeliver.
func (h *webhookHandler) handleInbound(w http.ResponseWriter, r *http.Request) {
	var req inboundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.From == "" || req.Text == "" {
		http.Error(w, "from and text are required", http.StatusBadRequest)
		return
	}

	res, err := h.svc.HandleInboundMessage(r.Context(), req.From, req.Text)
	if err != nil {
		slog.Error("inbound message handling failed", "from", req.From, "error", err)
		http.Error(w, "message handling failed", http.StatusInternalServerError)
		return
	}
	if res.SendErr != nil {
		slog.Error("reply delivery failed", "from", req.From, "error", res.SendErr)
	}

	writeJSON(w, http.StatusOK, inboundResponse{
		Messages:  len(res.OutboundMessages),
		Escalated: res.EscalationTriggered,
	})
}

type startSessionRequest struct {
	PatientRef string `json:"patient_ref"`
	Phone      string `json:"phone"`
	Name       string `json:"name"`
	Region     string `json:"region"`
	Language   string `json:"language"`
}

type startSessionResponse struct {
	SessionID string `json:"session_id"`
}

func (h *webhookHandler) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PatientRef == "" || req.Phone == "" || req.Name == "" {
		http.Error(w, "patient_ref, phone and name are required", http.StatusBadRequest)
		return
	}

	res, err := h.svc.StartSession(r.Context(), req.PatientRef, req.Phone, session.PatientInfo{
		Name:     req.Name,
		Region:   req.Region,
		Language: req.Language,
	})
	if err != nil {
		slog.Error("session start failed", "patient_ref", req.PatientRef, "error", err)
		http.Error(w, "session start failed", http.StatusInternalServerError)
		return
	}
	if res.SendErr != nil {
		slog.Error("welcome delivery failed", "patient_ref", req.PatientRef, "error", res.SendErr)
	}

	writeJSON(w, http.StatusCreated, startSessionResponse{SessionID: res.SessionID})
}

func (h *webhookHandler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding failed", "error", err)
	}
}
