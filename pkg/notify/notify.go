// Package notify delivers rule-engine alerts to external channels.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Message is a channel-agnostic alert.
type Message struct {
	Kind    string      `json:"kind"`
	Subject string      `json:"subject"`
	Body    string      `json:"body"`
	Data    interface{} `json:"data,omitempty"`
}

// Sink delivers a message to a single channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Fanout delivers to every sink and joins the failures.
type Fanout []Sink

// Name implements Sink.
func (f Fanout) Name() string { return "fanout" }

// Send implements Sink. Every sink is attempted even when an earlier one fails.
func (f Fanout) Send(ctx context.Context, msg Message) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
