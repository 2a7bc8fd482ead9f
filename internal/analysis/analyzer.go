package analysis

import (
	"context"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	apperrors "github.com/walkguardian/guardian-server-go/internal/errors"
)

const analysisTimeout = 30 * time.Second

// Analyzer asks the risk-scoring backend for a verdict on the rolling
// transcript and returns the backend's raw labeled-line reply.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) (string, error)
}

// ModelAnalyzer runs the transcript through an LLM chain.
type ModelAnalyzer struct {
	chain        compose.Runnable[map[string]any, *schema.Message]
	systemPrompt string
}

func NewModelAnalyzer(ctx context.Context, chatModel einomodel.ChatModel, systemPrompt string) (*ModelAnalyzer, error) {
	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{transcript}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile analysis chain: %w", err)
	}

	return &ModelAnalyzer{
		chain:        runnable,
		systemPrompt: systemPrompt,
	}, nil
}

func (a *ModelAnalyzer) Analyze(ctx context.Context, transcript string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	start := time.Now()
	response, err := a.chain.Invoke(ctx, map[string]any{
		"system":     a.systemPrompt,
		"transcript": transcript,
	})
	elapsed := time.Since(start)

	if err != nil {
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("risk analysis call failed")
		return "", apperrors.AnalysisUnavailable(err)
	}

	log.Debug().Dur("elapsed", elapsed).Int("length", len(response.Content)).Msg("risk analysis reply received")
	return response.Content, nil
}
