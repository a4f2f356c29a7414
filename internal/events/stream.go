// Package events dispatches stored events to in-process subscribers.
package events

import (
	"context"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/db/controller/event"
	"github.com/pipelinekit/example-addon/internal/db/models"
)

// Handler reacts to a dispatched event.
type Handler func(ctx context.Context, e *models.Event) error

type subscription struct {
	pattern string
	handler Handler
}

var dispatchedEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "events_dispatched_total",
		Help: "Number of events dispatched to subscribers, labelled by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(dispatchedEvents)
}

// Stream persists events and notifies the handlers subscribed to their topic.
type Stream struct {
	db *gorm.DB

	mu   sync.RWMutex
	subs []subscription
}

// NewStream creates a stream storing events in db.
func NewStream(db *gorm.DB) *Stream {
	return &Stream{db: db}
}

// Subscribe registers h for topic. A topic ending in ".*" matches every topic
// with that prefix, "*" matches everything.
func (s *Stream) Subscribe(topic string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs = append(s.subs, subscription{pattern: topic, handler: h})
}

// Dispatch stores e and runs the matching handlers in subscription order.
// Handler failures are logged and do not affect the caller.
func (s *Stream) Dispatch(ctx context.Context, e *models.Event) error {
	if err := event.Create(ctx, s.db, e); err != nil {
		return err
	}

	s.mu.RLock()
	subs := make([]subscription, 0, len(s.subs))

	for _, sub := range s.subs {
		if matchTopic(sub.pattern, e.Topic) {
			subs = append(subs, sub)
		}
	}
	s.mu.RUnlock()

	for _, sub := range subs {
		s.notify(ctx, sub, e)
	}

	return nil
}

func (s *Stream) notify(ctx context.Context, sub subscription, e *models.Event) {
	defer func() {
		if r := recover(); r != nil {
			dispatchedEvents.WithLabelValues("panic").Inc()
			log.Error().Str("topic", e.Topic).Str("event", e.ID).Msgf("event handler panicked: %v", r)
		}
	}()

	if err := sub.handler(ctx, e); err != nil {
		dispatchedEvents.WithLabelValues("error").Inc()
		log.Error().Err(err).Str("topic", e.Topic).Str("event", e.ID).Msg("event handler failed")

		return
	}

	dispatchedEvents.WithLabelValues("ok").Inc()
}

func matchTopic(pattern, topic string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasSuffix(pattern, ".*"):
		return strings.HasPrefix(topic, strings.TrimSuffix(pattern, "*"))
	default:
		return pattern == topic
	}
}
