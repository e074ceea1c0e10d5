package assistant

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured
const DefaultModel = "gemini-2.5-flash"

// Gemini implements TextAssistant with the Gemini API
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client. It does not contact the API.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Answer sends one user turn under the system instruction
func (g *Gemini) Answer(ctx context.Context, question, systemInstruction string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(question, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	})
	if err != nil {
		if isInvalidKey(err) {
			return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	return resp.Text(), nil
}

// isInvalidKey matches the message the API returns for a rejected key
func isInvalidKey(err error) bool {
	return strings.Contains(err.Error(), "API key not valid")
}
