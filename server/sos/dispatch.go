package sos

import (
	"context"
	"sync"
	"time"

	"github.com/raksha-app/raksha/server/whatsapp"
	"go.uber.org/zap"
)

// DefaultPerRecipientTimeout bounds each provider call; a recipient whose
// call exceeds it is recorded as failed without affecting the others.
const DefaultPerRecipientTimeout = 15 * time.Second

// MessageSender is what the dispatch engine needs from the provider client.
type MessageSender interface {
	Send(ctx context.Context, msg *whatsapp.Message) (*whatsapp.SendResponse, error)
}

type SendSuccess struct {
	To     string `json:"to"`
	Status int    `json:"status"`
}

type SendFailure struct {
	To                  string `json:"to"`
	Status              int    `json:"status,omitempty"`
	Error               string `json:"error"`
	RecipientNotAllowed bool   `json:"recipientNotAllowed"`
}

// Result aggregates per-recipient outcomes, both lists ordered by the
// original contact-set index.
type Result struct {
	Successes []SendSuccess `json:"successes"`
	Failures  []SendFailure `json:"failures"`
}

// AllFailed is the aggregate failure condition: at least one attempt, zero
// successes.
func (r Result) AllFailed() bool {
	return len(r.Successes) == 0 && len(r.Failures) > 0
}

type Dispatcher struct {
	sender              MessageSender
	perRecipientTimeout time.Duration
	logg                *zap.SugaredLogger
}

func NewDispatcher(sender MessageSender, logg *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		sender:              sender,
		perRecipientTimeout: DefaultPerRecipientTimeout,
		logg:                logg,
	}
}

// Dispatch sends every payload to the provider, one goroutine per
// recipient. Outcomes land in per-recipient slots, so the final ordering
// follows the contact set rather than completion order, and one bad contact
// never blocks the rest. Each recipient is attempted exactly once.
//
// Cancellation of ctx is deliberately not propagated: once dispatch starts,
// every recipient is attempted, each bounded only by the per-recipient
// timeout. A caller disconnect must never abort an in-flight alert.
func (d *Dispatcher) Dispatch(ctx context.Context, outbounds []Outbound) Result {
	type outcome struct {
		resp *whatsapp.SendResponse
		err  error
	}

	outcomes := make([]outcome, len(outbounds))

	var wg sync.WaitGroup
	for i := range outbounds {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			// detached from ctx so a dropped request can't cancel the send
			callCtx, cancel := context.WithTimeout(context.Background(), d.perRecipientTimeout)
			defer cancel()

			resp, err := d.sender.Send(callCtx, outbounds[i].Message)
			outcomes[i] = outcome{resp: resp, err: err}
		}(i)
	}
	wg.Wait()

	result := Result{Successes: []SendSuccess{}, Failures: []SendFailure{}}
	for i, oc := range outcomes {
		to := outbounds[i].Contact.To

		if oc.err != nil {
			d.logg.Errorf("failed to send to %v: %v", to, oc.err)
			result.Failures = append(result.Failures, SendFailure{
				To:                  to,
				Status:              whatsapp.ErrStatusCode(oc.err),
				Error:               oc.err.Error(),
				RecipientNotAllowed: whatsapp.IsRecipientNotAllowed(oc.err),
			})
			continue
		}

		d.logg.Infof("whatsapp message sent to %v status=%v id=%v", to, oc.resp.StatusCode, oc.resp.MessageID)
		result.Successes = append(result.Successes, SendSuccess{To: to, Status: oc.resp.StatusCode})
	}

	return result
}
