package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/postcareplus/postcare-sms/internal/sms"
)

type HTTPGateway struct {
	gatewayURL string
	apiKey     string
	senderID   string
	client     *http.Client
}

func NewHTTPGateway(gatewayURL, apiKey, senderID string) sms.Sender {
	return &HTTPGateway{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		senderID:   senderID,
		client:     &http.Client{},
	}
}

type sendRequest struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

func (g *HTTPGateway) Send(ctx context.Context, phone, text string) error {
	b, err := json.Marshal(sendRequest{To: phone, From: g.senderID, Message: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.gatewayURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", g.apiKey)
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if !isHTTPSuccessStatus(resp.StatusCode) {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}

func isHTTPSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
