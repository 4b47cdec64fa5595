package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Advisor produces the free-text medical suggestions in the triage flow.
type Advisor interface {
	SuggestCondition(ctx context.Context, symptoms string) (string, error)
	SuggestSpecialist(ctx context.Context, symptoms string) (string, error)
}

// GeminiAdvisor implements Advisor using Google's Gemini API.
type GeminiAdvisor struct {
	client  *genai.Client
	modelID string
}

// NewGeminiAdvisor creates a Gemini-backed advisor.
func NewGeminiAdvisor(ctx context.Context, apiKey, modelID string) (*GeminiAdvisor, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("chat: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-1.5-pro-latest"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("chat: create gemini client: %w", err)
	}
	return &GeminiAdvisor{client: client, modelID: modelID}, nil
}

var _ Advisor = (*GeminiAdvisor)(nil)

// SuggestCondition asks the model for a likely condition and an
// over-the-counter remedy.
func (a *GeminiAdvisor) SuggestCondition(ctx context.Context, symptoms string) (string, error) {
	prompt := fmt.Sprintf("Based on these symptoms: %s, suggest a possible disease and an over-the-counter medication in 2-3 lines. Keep it natural.", symptoms)
	return a.generate(ctx, prompt)
}

// SuggestSpecialist asks the model which specialist fits the symptoms.
func (a *GeminiAdvisor) SuggestSpecialist(ctx context.Context, symptoms string) (string, error) {
	prompt := fmt.Sprintf("Based on the symptoms: %q, suggest a specialist doctor the user should consult. Keep it conversational and under 3 lines.", symptoms)
	return a.generate(ctx, prompt)
}

func (a *GeminiAdvisor) generate(ctx context.Context, prompt string) (string, error) {
	model := a.client.GenerativeModel(a.modelID)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("chat: gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("chat: gemini returned no candidates")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", errors.New("chat: gemini returned empty text")
	}
	return reply, nil
}

// Close releases the underlying client.
func (a *GeminiAdvisor) Close() error {
	return a.client.Close()
}

// StaticAdvisor is the fallback when no LLM is configured; it always points
// the patient at a general physician.
type StaticAdvisor struct{}

// SuggestCondition returns a generic triage reply.
func (StaticAdvisor) SuggestCondition(ctx context.Context, symptoms string) (string, error) {
	return "I can't diagnose that here, but rest and fluids usually help. If it persists, a doctor should take a look.", nil
}

// SuggestSpecialist returns a generic referral reply.
func (StaticAdvisor) SuggestSpecialist(ctx context.Context, symptoms string) (string, error) {
	return "A general physician is a good place to start; they can refer you onward if needed.", nil
}
