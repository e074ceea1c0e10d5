// Package assistant answers free-text questions about the standards using a
// remote language model grounded on the catalog.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/terra-clan/manrura/internal/metrics"
)

// Fixed replies
const (
	Greeting = "Hello! I am the MANRURA Assistant. How can I help you understand the ward management standards today?"

	MsgDisabled           = "Chatbot is currently disabled because the API key is not configured."
	MsgInvalidCredentials = "I'm sorry, but the API key is not valid. Please check the configuration."
	MsgUnavailable        = "I'm having trouble connecting to my knowledge base right now. Please try again in a moment."
)

var (
	ErrNotConfigured      = errors.New("assistant is not configured")
	ErrInvalidCredentials = errors.New("assistant API key is not valid")
	ErrEmptyAnswer        = errors.New("assistant returned an empty answer")
)

// TextAssistant is a remote model that answers one question under a system
// instruction. Implementations return ErrInvalidCredentials when the
// provider rejects the key.
type TextAssistant interface {
	Answer(ctx context.Context, question, systemInstruction string) (string, error)
}

// CatalogSource provides the catalog document the answers are grounded on
type CatalogSource interface {
	JSON() (string, error)
}

// BuildSystemInstruction embeds the full catalog in the instruction text
func BuildSystemInstruction(cat CatalogSource) (string, error) {
	doc, err := cat.JSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode catalog: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a helpful assistant for MANRURA (Manajemen Ruang Rawat), a set of standards for hospital ward management at RSUP Dr. Kariadi Semarang. ")
	b.WriteString("Your purpose is to help hospital staff understand and apply these standards.\n\n")
	b.WriteString("You must answer questions based *only* on the provided MANRURA document. Do not use any external knowledge. ")
	b.WriteString("If the answer is not in the document, say that you cannot find the information in the MANRURA guide.\n")
	b.WriteString("Your answers should be clear, concise, and professional. ")
	b.WriteString("You should answer in the same language as the user's question (Indonesian or English).\n")
	b.WriteString("The full MANRURA document is provided below in JSON format. Use it as your single source of truth.\n\n")
	b.WriteString("MANRURA Document (JSON):\n")
	b.WriteString(doc)
	b.WriteString("\n")
	return b.String(), nil
}

// Service turns model failures into fixed user-facing replies
type Service struct {
	model       TextAssistant // nil when no credential is configured
	instruction string
	timeout     time.Duration
	metrics     *metrics.Metrics
}

// NewService creates a service. A nil model disables the assistant.
func NewService(model TextAssistant, cat CatalogSource, timeout time.Duration, m *metrics.Metrics) (*Service, error) {
	instruction, err := BuildSystemInstruction(cat)
	if err != nil {
		return nil, err
	}

	if model == nil {
		slog.Warn("assistant API key not set, chatbot functionality will be disabled")
	}

	return &Service{
		model:       model,
		instruction: instruction,
		timeout:     timeout,
		metrics:     m,
	}, nil
}

// Enabled reports whether questions reach a model
func (s *Service) Enabled() bool {
	return s.model != nil
}

// Ask returns the model's answer or one of the fixed fallback replies.
// It never fails.
func (s *Service) Ask(ctx context.Context, prompt string) string {
	if s.model == nil {
		s.metrics.AssistantCall("disabled")
		return MsgDisabled
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	answer, err := s.model.Answer(ctx, prompt, s.instruction)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = ErrEmptyAnswer
	}
	if err != nil {
		slog.Error("assistant request failed", "error", err)
		if errors.Is(err, ErrInvalidCredentials) {
			s.metrics.AssistantCall("invalid_credentials")
			return MsgInvalidCredentials
		}
		s.metrics.AssistantCall("error")
		return MsgUnavailable
	}

	s.metrics.AssistantCall("ok")
	return answer
}
