// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/jeranaias/ptutor-tui/internal/model"
)

// Replier produces the assistant's answer to a thread.
type Replier interface {
	Reply(ctx context.Context, instructions string, history []model.Message) (string, error)
}

// =============================================================================
// OPENAI
// =============================================================================

// OpenAIReplier answers with a chat completion.
type OpenAIReplier struct {
	client *openai.Client
	model  string
}

// NewOpenAIReplier creates a replier. baseURL may be empty.
func NewOpenAIReplier(apiKey, baseURL, modelName string) *OpenAIReplier {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if modelName == "" {
		modelName = model.DefaultTutorModel
	}
	return &OpenAIReplier{client: openai.NewClientWithConfig(cfg), model: modelName}
}

// Reply sends the instructions as the system prompt followed by the thread.
func (r *OpenAIReplier) Reply(ctx context.Context, instructions string, history []model.Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if strings.TrimSpace(instructions) != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: instructions,
		})
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == model.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Text()})
	}

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    r.model,
		Messages: messages,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// =============================================================================
// CANNED
// =============================================================================

// CannedReplier answers without a model, echoing the last question back
// as a prompt to think about it.
type CannedReplier struct{}

// Reply implements Replier.
func (CannedReplier) Reply(_ context.Context, _ string, history []model.Message) (string, error) {
	var last string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == model.RoleUser {
			last = strings.TrimSpace(history[i].Text())
			break
		}
	}
	if last == "" {
		return "What would you like to work on today?", nil
	}
	return fmt.Sprintf("Good question. Before I answer %q, what do you already know about it?", last), nil
}
