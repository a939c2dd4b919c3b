package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oksasatya/go-ddd-board/pkg/mailer/templates"
)

// ErrPermanent marks a job that will never succeed and should be dropped.
var ErrPermanent = errors.New("permanent email failure")

// Dispatch decodes one queued job, renders it and hands it to s.
// Decode and render failures wrap ErrPermanent; send failures do not,
// so the caller can requeue them.
func Dispatch(ctx context.Context, body []byte, s Sender) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrPermanent, err)
	}
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrPermanent)
	}
	subject, text, html, err := job.Resolve(templates.Render)
	if err != nil {
		return fmt.Errorf("%w: render %s: %v", ErrPermanent, job.Template, err)
	}
	return s.Send(ctx, job.To, subject, text, html)
}

// Outcome is how a consumer settles a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Retry
	Drop
)

// RetryDelay is the pause before a failed send goes back on the queue.
const RetryDelay = 5 * time.Second

// Settle picks the outcome for a delivery. A send failure is retried once;
// a second failure on a redelivered message drops it.
func Settle(err error, redelivered bool) Outcome {
	switch {
	case err == nil:
		return Ack
	case errors.Is(err, ErrPermanent), redelivered:
		return Drop
	default:
		return Retry
	}
}
