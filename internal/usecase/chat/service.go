// Package chat composes answers from retrieved context and the
// configured system prompt.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/chatvat/chatvat/internal/domain"
)

const defaultSystemPrompt = "You are a helpful assistant. Answer using the provided context when it is relevant, and say so when it is not."

// Service is the query path. It reads from the shared knowledge store
// without taking the writer lock, so answers stay available while a
// background refresh is writing.
type Service struct {
	retriever    Retriever
	completer    Completer
	systemPrompt string
	topK         int
}

// New creates a chat service. systemPrompt may be empty.
func New(retriever Retriever, completer Completer, systemPrompt string, topK int) *Service {
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}
	if topK <= 0 {
		topK = 5
	}
	return &Service{
		retriever:    retriever,
		completer:    completer,
		systemPrompt: systemPrompt,
		topK:         topK,
	}
}

// Answer retrieves context for the message and generates a reply.
func (s *Service) Answer(ctx context.Context, message string) (string, error) {
	hits, err := s.retriever.Query(ctx, message, s.topK)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}

	answer, err := s.completer.Complete(ctx, s.systemPrompt, composeUserMessage(hits, message))
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

// composeUserMessage prepends retrieved context blocks, each with its
// source attribution so the model can cite where facts came from. With
// no hits the question is passed through bare.
func composeUserMessage(hits []domain.Hit, message string) string {
	if len(hits) == 0 {
		return message
	}

	var b strings.Builder
	b.WriteString("Context:\n")
	for _, h := range hits {
		b.WriteString("---\n")
		b.WriteString(h.Text)
		b.WriteString("\n(source: ")
		b.WriteString(h.SourceTarget)
		b.WriteString(")\n")
	}
	b.WriteString("---\n\nQuestion: ")
	b.WriteString(message)
	return b.String()
}
