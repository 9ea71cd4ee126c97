// Package notify delivers audit events about job mutations made through the dashboard.
//
// Events are posted as JSON to every configured webhook. Delivery happens in background goroutines
// with retries and never affects the result of the user action that caused it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/notify"
	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"
)

//go:generate moq -out mocks/sender.go -pkg mocks -skip-ensure -fmt goimports . Sender

// event actions
const (
	ActionCreated = "created"
	ActionPaused  = "paused"
	ActionResumed = "resumed"
)

// Sender delivers text to a destination, implemented by notify.Webhook
type Sender interface {
	Send(ctx context.Context, destination, text string) error
}

// Repeater repeats failed function
type Repeater interface {
	Do(ctx context.Context, fun func() error, errors ...error) (err error)
}

// Event describes a job mutation
type Event struct {
	Action   string    `json:"action"`
	Category string    `json:"category"`
	JobID    int       `json:"job_id"`
	JobName  string    `json:"job_name"`
	Status   string    `json:"status"`
	User     string    `json:"user"`
	Host     string    `json:"host,omitempty"`
	Time     time.Time `json:"time"`
	Text     string    `json:"text"` // human readable summary, understood by slack-like webhooks
}

// Params defines auditor parameters
type Params struct {
	Webhooks []string      // destination urls
	Timeout  time.Duration // per request timeout
	Attempts int           // delivery attempts per webhook
	Delay    time.Duration // initial retry delay
	Host     string        // dashboard host name added to events
}

// Auditor sends events to webhooks
type Auditor struct {
	Params
	sender   Sender
	repeater Repeater
	wg       sync.WaitGroup
}

// NewAuditor makes an auditor with webhook sender and backoff repeater.
// Returns nil if no webhooks configured, nil auditor is safe to use.
func NewAuditor(p Params) *Auditor {
	if len(p.Webhooks) == 0 {
		return nil
	}
	if p.Timeout <= 0 {
		p.Timeout = 5 * time.Second
	}
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Delay <= 0 {
		p.Delay = time.Second
	}
	sender := notify.NewWebhook(notify.WebhookParams{
		Timeout: p.Timeout,
		Headers: []string{"Content-Type:application/json"},
	})
	rptr := repeater.New(&strategy.Backoff{Repeats: p.Attempts, Duration: p.Delay, Factor: 2, Jitter: true})
	log.Printf("[INFO] audit webhooks enabled, %d destinations", len(p.Webhooks))
	return &Auditor{Params: p, sender: sender, repeater: rptr}
}

// Publish sends the event to all webhooks in background
func (a *Auditor) Publish(ev Event) {
	if a == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	if ev.Host == "" {
		ev.Host = a.Host
	}
	if ev.Text == "" {
		ev.Text = ev.summary()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[WARN] can't marshal audit event: %v", err)
		return
	}

	for _, dest := range a.Webhooks {
		a.wg.Add(1)
		go func(dest string) {
			defer a.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(a.Attempts+1)*(a.Timeout+a.Delay))
			defer cancel()
			err := a.repeater.Do(ctx, func() error { return a.sender.Send(ctx, dest, string(data)) })
			if err != nil {
				log.Printf("[WARN] failed to deliver audit event %q to %s: %v", ev.Action, dest, err)
				return
			}
			log.Printf("[DEBUG] audit event %q for job %d delivered to %s", ev.Action, ev.JobID, dest)
		}(dest)
	}
}

// Close waits for in-flight deliveries
func (a *Auditor) Close() {
	if a == nil {
		return
	}
	a.wg.Wait()
}

// Summary returns configured destinations count, used by settings view
func (a *Auditor) Summary() (webhooks int, attempts int) {
	if a == nil {
		return 0, 0
	}
	return len(a.Webhooks), a.Attempts
}

func (e Event) summary() string {
	return fmt.Sprintf("%s %s job %q (id %d) by %s, status %s", e.Category, e.Action, e.JobName, e.JobID, e.User, e.Status)
}
