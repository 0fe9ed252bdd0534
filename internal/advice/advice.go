// Package advice requests natural-language financial advice for a summary text.
// Every failure is reported to the caller as display text, never as an error.
package advice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/metrics"
	"github.com/rs/zerolog"
)

// Texts shown to the user when no advice could be produced.
const (
	TextMissingKey    = "尚未設定 API KEY，無法提供 AI 建議。"
	TextEmptyResponse = "AI 無法生成回應，請稍後再試。"
	TextCallFailed    = "調用 AI 服務時發生錯誤。"
)

// Outcome labels used for logs and metrics.
const (
	OutcomeSuccess    = "success"
	OutcomeMissingKey = "missing_key"
	OutcomeEmpty      = "empty"
	OutcomeError      = "error"
)

// ErrEmptyResponse is returned by a Generator when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Result is the text to display and whether it is a fallback message.
type Result struct {
	Text    string `json:"text"`
	Failed  bool   `json:"failed"`
	Outcome string `json:"outcome"`
}

// Advisor turns a financial summary into advice text.
type Advisor interface {
	Advise(ctx context.Context, summary string) Result
}

// Generator sends a prompt to a text-generation backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BuildPrompt wraps summary in the advisor instructions.
func BuildPrompt(summary string) string {
	return "你是一位資深的理財顧問。以下是使用者的財務摘要：\n" +
		summary +
		"\n請根據這些數據提供 3-5 點具體的理財建議或警示。請使用繁體中文。"
}

// Service is an Advisor backed by a Generator.
type Service struct {
	gen     Generator
	log     zerolog.Logger
	metrics metrics.Recorder
}

// NewService creates an Advisor around gen. A nil recorder disables metrics.
func NewService(gen Generator, log zerolog.Logger, rec metrics.Recorder) *Service {
	if rec == nil {
		rec = metrics.NoOp{}
	}
	return &Service{gen: gen, log: log, metrics: rec}
}

// Advise implements Advisor.
func (s *Service) Advise(ctx context.Context, summary string) Result {
	start := time.Now()

	text, err := s.gen.Generate(ctx, BuildPrompt(summary))
	duration := time.Since(start)

	var res Result
	switch {
	case err != nil && !errors.Is(err, ErrEmptyResponse):
		s.log.Error().Err(err).Dur("duration", duration).Msg("Advice generation failed")
		res = Result{Text: TextCallFailed, Failed: true, Outcome: OutcomeError}
	case err != nil || strings.TrimSpace(text) == "":
		s.log.Warn().Dur("duration", duration).Msg("Advice generation returned no text")
		res = Result{Text: TextEmptyResponse, Failed: true, Outcome: OutcomeEmpty}
	default:
		s.log.Info().Dur("duration", duration).Int("length", len(text)).Msg("Advice generated")
		res = Result{Text: text, Outcome: OutcomeSuccess}
	}

	s.metrics.RecordAdvice(res.Outcome, duration)
	return res
}

// Disabled is the Advisor used when no API key is configured.
type Disabled struct{}

// Advise implements Advisor.
func (Disabled) Advise(ctx context.Context, summary string) Result {
	return Result{Text: TextMissingKey, Failed: true, Outcome: OutcomeMissingKey}
}

var (
	_ Advisor = (*Service)(nil)
	_ Advisor = Disabled{}
)
