package cmd

import (
	"github.com/felixgeelhaar/smartplan/internal/events"
)

// sinks builds the event sinks enabled by configuration.
func (a *app) sinks() []events.Sink {
	ec := a.cfg.Events

	var sinks []events.Sink
	if ec.LogEnabled {
		sinks = append(sinks, events.NewLogSink(a.logger))
	}
	if ec.WebhookURL != "" {
		wc := events.DefaultWebhookConfig(ec.WebhookURL)
		wc.Secret = ec.WebhookSecret
		wc.MaxAttempts = ec.MaxAttempts
		wc.InitialDelay = ec.InitialDelay
		wc.Timeout = ec.Timeout
		if ec.DeadLetterPath != "" {
			wc.DeadLetter = events.NewDeadLetterStore(ec.DeadLetterPath)
		}
		sinks = append(sinks, events.NewWebhookSink(wc, nil))
	}
	return sinks
}

func (a *app) dispatcher() *events.Dispatcher {
	return events.NewDispatcher(a.cfg.Events.Buffer, a.sinks(),
		events.WithDispatcherLogger(a.logger),
		events.WithDispatcherMetrics(a.metrics),
	)
}
