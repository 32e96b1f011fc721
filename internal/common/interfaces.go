package common

import (
	"time"
)

type EventType string

const (
	PostCreatedEvent      EventType = "post.created"
	PostUpdatedEvent      EventType = "post.updated"
	PostRescheduledEvent  EventType = "post.rescheduled"
	PostDeletedEvent      EventType = "post.deleted"
	PostPublishedEvent    EventType = "post.published"
	ApprovalChangedEvent  EventType = "approval.changed"
	CollectionStatusEvent EventType = "analytics.collection_status"
)

// ChangeEvent tells calendar and dashboard subscribers that team data moved.
type ChangeEvent struct {
	Type       EventType         `json:"type"`
	TeamID     string            `json:"team_id"`
	PostID     string            `json:"post_id,omitempty"`
	Status     string            `json:"status,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       map[string]string `json:"data,omitempty"`
}

type Observer interface {
	Update(event ChangeEvent) error
	Name() string
}

type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	Notify(event ChangeEvent)
	NotifyAsync(event ChangeEvent)
}
