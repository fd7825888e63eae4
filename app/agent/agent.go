package agent

import (
	"context"

	"studyrag/logger"
	"studyrag/types"
)

const (
	chatTemperature = 0.7
	chatMaxTokens   = 1000
)

// Agent answers chat turns and writes quizzes. A nil Completer means no LLM
// is configured.
type Agent struct {
	log       *logger.Logger
	completer Completer
	chatModel string
	quizModel string
}

func New(log *logger.Logger, completer Completer, chatModel, quizModel string) *Agent {
	return &Agent{log: log, completer: completer, chatModel: chatModel, quizModel: quizModel}
}

func (a *Agent) Configured() bool {
	return a != nil && a.completer != nil
}

// Reply returns the assistant's answer to the conversation.
func (a *Agent) Reply(ctx context.Context, system string, history []types.ChatMessage) (string, error) {
	if !a.Configured() {
		return "", types.ErrUnavailable
	}
	answer, err := a.completer.Complete(ctx, Prompt{
		System:      system,
		Messages:    history,
		Model:       a.chatModel,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		a.log.Error("chat completion failed", "error", err)
		return "", err
	}
	return answer, nil
}
