package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/postcareplus/postcare-sms/internal/advisor"
	"github.com/postcareplus/postcare-sms/internal/scoring"
	openai "github.com/sashabaranov/go-openai"
)

const advisorSystemPrompt = "You are a post-surgical care assistant for patients in Rwanda. " +
	"Answer in Kinyarwanda, in plain language that fits one SMS (under 320 characters). " +
	"Give practical self-care guidance only; always tell the patient to contact their " +
	"doctor for anything severe, and never invent diagnoses or medication doses."

// OpenAIAdvisor generates advice through the chat completions API. It is
// an optional backend behind the same Advisor interface as the template
// one; the scoring result is passed in as context, never produced here.
type OpenAIAdvisor struct {
	client *openai.Client
	model  string
}

func NewOpenAIAdvisor(apiKey, model string) advisor.Advisor {
	return &OpenAIAdvisor{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (a *OpenAIAdvisor) AdviseVitals(ctx context.Context, v scoring.Vitals, r scoring.Result, patient advisor.PatientContext) (string, error) {
	prompt := fmt.Sprintf(
		"Patient %s reported: pain %g/10, wound healing %g/10, temperature %.1f°C, mobility %g/10. "+
			"Model assessment: severity %.1f, recovery score %.2f, alerts %v. "+
			"Write a short SMS with recovery advice for this patient.",
		patient.Name, v.Pain, v.WoundHealing, v.TemperatureC, v.Mobility,
		r.Severity, r.RecoveryScore, r.Alerts)
	return a.complete(ctx, prompt)
}

func (a *OpenAIAdvisor) Reply(ctx context.Context, freeText string, patient advisor.PatientContext) (string, error) {
	prompt := fmt.Sprintf("Patient %s writes: %q. Write a short SMS reply.", patient.Name, freeText)
	return a.complete(ctx, prompt)
}

func (a *OpenAIAdvisor) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: advisorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("advisor completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("advisor completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
