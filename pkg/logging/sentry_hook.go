package logging

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/openHPI/namestore/pkg/dto"
	"github.com/sirupsen/logrus"
)

// SentryContextKey is the name of the Sentry context the log entry data is attached to.
const SentryContextKey = "NameStore Details"

// SentryHook reports warnings and errors to Sentry. The entry data (including the request id and
// full name added by the ContextHook) is attached as SentryContextKey context of the event.
type SentryHook struct{}

func (hook *SentryHook) Fire(entry *logrus.Entry) error {
	event, details := sentryEvent(entry)
	hub := hubFor(entry.Context)
	// A fresh scope keeps the entry details out of later events.
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetContext(SentryContextKey, details)
		for _, key := range dto.LoggedContextKeys {
			if value, ok := details[string(key)].(string); ok {
				scope.SetTag(string(key), value)
			}
		}
		hub.CaptureEvent(event)
	})
	return nil
}

func sentryEvent(entry *logrus.Entry) (*sentry.Event, sentry.Context) {
	const maxErrorDepth = 10
	event := sentry.NewEvent()
	event.Timestamp = entry.Time
	event.Level = sentry.Level(entry.Level.String())
	event.Message = entry.Message

	details := make(sentry.Context, len(entry.Data))
	for key, value := range entry.Data {
		if err, isError := value.(error); isError && key == logrus.ErrorKey {
			event.SetException(err, maxErrorDepth)
			value = err.Error()
		}
		details[key] = value
	}
	return event, details
}

func hubFor(ctx context.Context) *sentry.Hub {
	if ctx != nil {
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			return hub
		}
	}
	return sentry.CurrentHub()
}

// Levels are the levels that are worth an alert.
func (hook *SentryHook) Levels() []logrus.Level {
	return logrus.AllLevels[:logrus.WarnLevel+1]
}

// StartSpan starts a Sentry span for the callback. The span ends when the callback returns.
func StartSpan(op, description string, ctx context.Context, callback func(context.Context)) {
	span := sentry.StartSpan(ctx, op)
	span.Description = description
	defer span.Finish()
	callback(span.Context())
}
