// Package digest e-mails every user a summary of their expense forecast.
package digest

import (
	"context"
	"fmt"

	"github.com/budgetwise/forecast-service/internal/models"
	"github.com/budgetwise/forecast-service/internal/repository"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Predictor computes a user's expense prediction
type Predictor interface {
	ComputeExpensePrediction(ctx context.Context, email string) (*models.ExpensePrediction, error)
}

// Result counts the outcome of one run
type Result struct {
	Sent   int
	Failed int
}

// Job builds and sends forecast digests
type Job struct {
	users     repository.Store
	predictor Predictor
	sender    Sender
	log       *logrus.Logger
}

// NewJob creates a digest job
func NewJob(users repository.Store, predictor Predictor, sender Sender, log *logrus.Logger) *Job {
	return &Job{users: users, predictor: predictor, sender: sender, log: log}
}

// Run sends one digest per user. A failure for one user is logged and the run
// continues with the next.
func (j *Job) Run(ctx context.Context) (Result, error) {
	var res Result
	users, err := j.users.ListUsers(ctx)
	if err != nil {
		return res, fmt.Errorf("list users: %w", err)
	}

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		entry := j.log.WithField("user_id", u.ID)

		p, err := j.predictor.ComputeExpensePrediction(ctx, u.Email)
		if err != nil {
			entry.Errorf("Failed to compute forecast: %v", err)
			res.Failed++
			continue
		}
		if err := j.sender.Send(BuildMessage(u, p)); err != nil {
			entry.Errorf("Failed to send digest: %v", err)
			res.Failed++
			continue
		}
		res.Sent++
	}

	j.log.WithFields(logrus.Fields{"sent": res.Sent, "failed": res.Failed}).Info("Forecast digest finished")
	return res, nil
}

// BuildMessage formats the digest e-mail for one user
func BuildMessage(u *models.User, p *models.ExpensePrediction) Message {
	var current, next models.DataPoint
	if len(p.HistoricalData) > 0 {
		current = p.HistoricalData[len(p.HistoricalData)-1]
	}
	if len(p.PredictedData) > 0 {
		next = p.PredictedData[0]
	}

	name := u.Username
	if name == "" {
		name = u.Email
	}

	body := fmt.Sprintf("Dear %s,\n\n", name)
	body += fmt.Sprintf(
		"Your expenses so far in %s: %s\n"+
			"Projected expenses for %s: %s\n",
		current.Label, money(current.Value), next.Label, money(p.NextMonthPrediction),
	)
	body += "\nThe projection assumes you keep spending at this month's daily average.\n"
	body += "\nBest regards,\nBudgetWise"

	return Message{
		To:      u.Email,
		Subject: fmt.Sprintf("Your %s expense forecast", next.Label),
		Body:    body,
	}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Scheduler runs the digest job on a cron schedule
type Scheduler struct {
	cron *cron.Cron
	job  *Job
	log  *logrus.Logger
}

// NewScheduler registers job under schedule (standard 5-field cron syntax)
func NewScheduler(schedule string, job *Job, log *logrus.Logger) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, job: job, log: log}
	if _, err := c.AddFunc(schedule, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid digest schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) runOnce() {
	if _, err := s.job.Run(context.Background()); err != nil {
		s.log.Errorf("Forecast digest failed: %v", err)
	}
}

// Start begins running the schedule in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Forecast digest scheduler started")
}

// Stop halts the schedule and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
