// Package analyze sequences the document-to-transactions pipeline:
// normalize, attempt the model path, demote to the pattern-based fallback on
// any failure, then aggregate the summary.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/philvuai/bnk/internal/fallback"
	"github.com/philvuai/bnk/internal/llm"
	"github.com/philvuai/bnk/internal/model"
	"github.com/philvuai/bnk/internal/normalize"
	"github.com/philvuai/bnk/internal/repair"
)

// Analyzer runs the analysis pipeline. The model client is optional: without
// one every analysis takes the fallback path.
type Analyzer struct {
	client    llm.Client
	prompts   *PromptBuilder
	extractor *fallback.Extractor
	logger    *slog.Logger
}

// New creates an Analyzer. A nil client is allowed and forces the
// deterministic path.
func New(client llm.Client, logger *slog.Logger) (*Analyzer, error) {
	prompts, err := NewPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt builder: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		client:    client,
		prompts:   prompts,
		extractor: fallback.New(),
		logger:    logger,
	}, nil
}

// Analyze runs the full pipeline over raw extracted text. It is total: model
// transport failures and unusable responses demote to the fallback path,
// which cannot fail, so every input yields a well-formed result.
func (a *Analyzer) Analyze(ctx context.Context, rawText string) *model.AnalysisResult {
	text := normalize.Text(rawText)

	if a.client == nil {
		return a.fallbackResult(text)
	}

	transactions, err := a.modelPath(ctx, text)
	if err != nil {
		a.logger.Warn("model path failed, demoting to fallback",
			"error", err)
		return a.fallbackResult(text)
	}

	return a.buildResult(transactions, model.SourceModel)
}

// FallbackAnalyze forces the deterministic pattern path with no model call.
func (a *Analyzer) FallbackAnalyze(rawText string) *model.AnalysisResult {
	return a.fallbackResult(normalize.Text(rawText))
}

// RecomputeSummary rebuilds the summary block from a transaction list. It
// must be called after any mutation to the list; the summary is never
// patched incrementally.
func (a *Analyzer) RecomputeSummary(transactions []model.TransactionRecord) model.Summary {
	return model.Summarize(transactions)
}

// modelPath builds the prompt, calls the model and repairs the response.
// Context cancellation surfaces from the client call and is handled exactly
// like any other transport failure.
func (a *Analyzer) modelPath(ctx context.Context, text string) ([]model.TransactionRecord, error) {
	prompt, err := a.prompts.Build(text)
	if err != nil {
		return nil, fmt.Errorf("prompt build failed: %w", err)
	}

	response, err := a.client.Call(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}

	transactions, err := repair.ParseTransactions(response)
	if err != nil {
		return nil, fmt.Errorf("response unusable: %w", err)
	}

	a.logger.Debug("model path succeeded", "transactions", len(transactions))
	return transactions, nil
}

func (a *Analyzer) fallbackResult(text string) *model.AnalysisResult {
	return a.buildResult(a.extractor.Extract(text), model.SourceFallback)
}

func (a *Analyzer) buildResult(transactions []model.TransactionRecord, source model.ResultSource) *model.AnalysisResult {
	now := time.Now().UTC()
	return &model.AnalysisResult{
		CreatedAt:    now,
		UpdatedAt:    now,
		Source:       source,
		Transactions: transactions,
		Summary:      model.Summarize(transactions),
	}
}
