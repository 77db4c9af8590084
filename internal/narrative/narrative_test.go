package narrative

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/budgetwise/forecast-service/internal/integrations/gemini"
	"github.com/budgetwise/forecast-service/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPrediction struct {
	amount float64
	err    error
}

func (f fixedPrediction) NextMonthPrediction(context.Context, string) (float64, error) {
	return f.amount, f.err
}

type stubCompleter struct {
	text   string
	err    error
	prompt string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.text, s.err
}

func TestNextMonthMessage(t *testing.T) {
	logger, _ := test.NewNullLogger()
	completer := &stubCompleter{text: "Nice work, keep it up!"}
	n := NewNarrator(fixedPrediction{amount: 900}, completer, logger)

	msg, err := n.NextMonthMessage(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Nice work, keep it up!", msg)
	assert.Contains(t, completer.prompt, "approx 900.00.")
}

func TestNextMonthMessageDegradesWhenServiceFails(t *testing.T) {
	logger, hook := test.NewNullLogger()
	completer := &stubCompleter{err: gemini.ErrServiceUnavailable}
	n := NewNarrator(fixedPrediction{amount: 120.5}, completer, logger)

	msg, err := n.NextMonthMessage(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, Unavailable, msg)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestNextMonthMessageEmptyCompletion(t *testing.T) {
	logger, _ := test.NewNullLogger()
	n := NewNarrator(fixedPrediction{amount: 0}, &stubCompleter{text: "  "}, logger)

	msg, err := n.NextMonthMessage(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, NoContent, msg)
}

func TestNextMonthMessagePropagatesForecastErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	completer := &stubCompleter{text: "unused"}
	n := NewNarrator(fixedPrediction{err: repository.ErrNotFound}, completer, logger)

	_, err := n.NextMonthMessage(context.Background(), "ghost@example.com")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.Empty(t, completer.prompt, "completion must not be requested")
}

func TestNextMonthPromptRoundsToCents(t *testing.T) {
	assert.Contains(t, NextMonthPrompt(1234.5678), "approx 1234.57.")
	assert.Contains(t, NextMonthPrompt(0), "approx 0.00.")
}

type hangingCompleter struct{}

func (hangingCompleter) Complete(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestNextMonthMessageDegradesWhenServiceHangs(t *testing.T) {
	logger, _ := test.NewNullLogger()
	n := NewNarrator(fixedPrediction{amount: 900}, hangingCompleter{}, logger,
		WithCompletionTimeout(20*time.Millisecond))

	start := time.Now()
	msg, err := n.NextMonthMessage(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, Unavailable, msg)
	assert.Less(t, time.Since(start), 2*time.Second)
}
