// Package ai generates companion replies with a hosted chat model. It is
// optional: when the model is unconfigured or errors, the conversation
// controller falls back to the keyword classifier.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/config"
	"github.com/otsyhq/otsy-backend/internal/model/chat"
	"github.com/otsyhq/otsy-backend/internal/model/persona"
)

const historyLimit = 10

// Service wraps the model behind a prompt chain tuned for short, empathetic
// replies.
type Service struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	logger *zap.Logger
}

func NewService(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chain: runnable, logger: logger}, nil
}

// Reply produces one companion message for the persona. Implements the
// conversation controller's Replier.
func (s *Service) Reply(ctx context.Context, p persona.Persona, history []chat.Message, userText string) (string, error) {
	input := map[string]any{
		"system":  systemPrompt(p),
		"history": historyMessages(history),
		"query":   userText,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run companion chain: %w", err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", fmt.Errorf("model returned empty reply")
	}

	s.logger.Debug("generated companion reply",
		zap.String("persona", p.ID), zap.Int("length", len(response.Content)))
	return response.Content, nil
}

func systemPrompt(p persona.Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a %s for a mental-wellness app.\n", p.Name, strings.ToLower(p.Title))
	fmt.Fprintf(&b, "Tone: %s.\n", p.Tone)
	b.WriteString("Keep answers short (max 2 sentences). Be empathetic. ")
	b.WriteString("Never diagnose and never prescribe. ")
	b.WriteString("If the user mentions self-harm or suicide, tell them to call 988 or go to the nearest emergency room immediately.")
	return b.String()
}

func historyMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Text))
		case chat.SenderBot:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		}
	}
	return history
}
