package services

import (
	"time"

	"github.com/solarworks/solarworks/internal/metrics"
)

type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionReorder Action = "reorder"
)

const (
	ResourceProject       = "project"
	ResourceTeamMember    = "team"
	ResourceNews          = "news"
	ResourceHomepageVideo = "homepage-video"
)

// ContentEvent describes one successful admin mutation.
type ContentEvent struct {
	Resource string    `json:"resource"`
	Action   Action    `json:"action"`
	ID       string    `json:"id,omitempty"`
	Title    string    `json:"title,omitempty"`
	Admin    string    `json:"admin,omitempty"`
	At       time.Time `json:"at"`
}

// Sink receives content events. Publish must not block the request.
type Sink interface {
	Publish(event ContentEvent)
}

// Fanout forwards every event to each sink in order.
type Fanout []Sink

func (f Fanout) Publish(event ContentEvent) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	metrics.ContentMutations.WithLabelValues(event.Resource, string(event.Action)).Inc()

	for _, sink := range f {
		if sink != nil {
			sink.Publish(event)
		}
	}
}
