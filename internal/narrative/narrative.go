package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	// Unavailable replaces the message when the completion service fails.
	Unavailable = "Error: AI service unavailable."
	// NoContent replaces an empty completion.
	NoContent = "No content available."
)

// Completer turns a prompt into text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PredictionSource yields the next-month expense prediction for a user.
type PredictionSource interface {
	NextMonthPrediction(ctx context.Context, email string) (float64, error)
}

// DefaultCompletionTimeout bounds one completion including its retries.
const DefaultCompletionTimeout = 45 * time.Second

// Narrator writes chat messages about a user's forecast.
type Narrator struct {
	predictions PredictionSource
	completer   Completer
	log         *logrus.Logger
	timeout     time.Duration
}

// Option configures a Narrator.
type Option func(*Narrator)

// WithCompletionTimeout caps the time spent waiting for the completer.
// Non-positive values keep the default.
func WithCompletionTimeout(d time.Duration) Option {
	return func(n *Narrator) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// NewNarrator creates a Narrator.
func NewNarrator(predictions PredictionSource, completer Completer, log *logrus.Logger, opts ...Option) *Narrator {
	n := &Narrator{predictions: predictions, completer: completer, log: log, timeout: DefaultCompletionTimeout}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NextMonthMessage returns a short chat message about next month's predicted
// expenses. Failures to resolve the user or read transactions are returned;
// a failing or slow completion service degrades to Unavailable.
func (n *Narrator) NextMonthMessage(ctx context.Context, email string) (string, error) {
	amount, err := n.predictions.NextMonthPrediction(ctx, email)
	if err != nil {
		return "", err
	}

	cctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	text, err := n.completer.Complete(cctx, NextMonthPrompt(amount))
	if err != nil {
		n.log.WithField("email", email).Errorf("Gemini API error: %v", err)
		return Unavailable, nil
	}
	if strings.TrimSpace(text) == "" {
		return NoContent, nil
	}
	return text, nil
}

// NextMonthPrompt builds the prompt for the next-month message.
func NextMonthPrompt(amount float64) string {
	return fmt.Sprintf(
		"Based on the user's current daily spending average, the predicted expense for next month is approx %s. "+
			"Write a short, encouraging chat message (under 100 words) about this. "+
			"If the prediction is high, suggest cutting back. If low, say great job.",
		decimal.NewFromFloat(amount).StringFixed(2),
	)
}
