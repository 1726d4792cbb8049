// Package events provides the event bus used for editor notifications:
// store mutations, pipeline progress, and export lifecycle. It backs the
// websocket feed and the user-facing notification side-channel.
package events

import (
	"time"
)

// EventType represents the type of event
type EventType string

// System-wide event types
const (
	// Timeline events
	EventTimelineTrackAdded   EventType = "timeline.track.added"
	EventTimelineTrackRemoved EventType = "timeline.track.removed"
	EventTimelineItemAdded    EventType = "timeline.item.added"
	EventTimelineItemUpdated  EventType = "timeline.item.updated"
	EventTimelineItemRemoved  EventType = "timeline.item.removed"
	EventTimelineItemMoved    EventType = "timeline.item.moved"

	// Overlay events
	EventOverlayAdded      EventType = "overlay.added"
	EventOverlayUpdated    EventType = "overlay.updated"
	EventOverlayRemoved    EventType = "overlay.removed"
	EventOverlayReconciled EventType = "overlay.reconciled"

	// Audio clip events
	EventAudioClipAdded     EventType = "audio.clip.added"
	EventAudioClipCommitted EventType = "audio.clip.committed"
	EventAudioClipRemoved   EventType = "audio.clip.removed"

	// Processing events
	EventProcessingStepStarted  EventType = "processing.step.started"
	EventProcessingStepApplied  EventType = "processing.step.applied"
	EventProcessingStepFailed   EventType = "processing.step.failed"
	EventProcessingUndoReplayed EventType = "processing.undo.replayed"

	// Export events
	EventExportStarted    EventType = "export.started"
	EventExportCompressed EventType = "export.compressed"
	EventExportCompleted  EventType = "export.completed"
	EventExportFailed     EventType = "export.failed"

	// Catalog events
	EventCatalogRefreshed EventType = "catalog.refreshed"

	// System events
	EventSystemStarted EventType = "system.started"
	EventSystemStopped EventType = "system.stopped"

	// General events
	EventError   EventType = "error"
	EventWarning EventType = "warning"
	EventInfo    EventType = "info"
)

// EventPriority represents the priority level of an event
type EventPriority int

const (
	PriorityLow      EventPriority = 1
	PriorityNormal   EventPriority = 5
	PriorityHigh     EventPriority = 10
	PriorityCritical EventPriority = 20
)

// Event represents a system event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Source    string                 `json:"source"`
	Target    string                 `json:"target"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data"`
	Priority  EventPriority          `json:"priority"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventHandler represents a function that handles events
type EventHandler func(event Event) error

// EventFilter represents filters for event subscriptions
type EventFilter struct {
	Types    []EventType    `json:"types,omitempty"`
	Sources  []string       `json:"sources,omitempty"`
	Priority *EventPriority `json:"priority,omitempty"`
}

// Matches reports whether the event passes the filter
func (f EventFilter) Matches(event Event) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if t == event.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Sources) > 0 {
		found := false
		for _, s := range f.Sources {
			if s == event.Source {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Priority != nil && event.Priority < *f.Priority {
		return false
	}
	return true
}

// Subscription represents an event subscription
type Subscription struct {
	ID            string       `json:"id"`
	Filter        EventFilter  `json:"filter"`
	Handler       EventHandler `json:"-"`
	Subscriber    string       `json:"subscriber"`
	Created       time.Time    `json:"created"`
	LastTriggered *time.Time   `json:"last_triggered,omitempty"`
	TriggerCount  int64        `json:"trigger_count"`
}

// EventStats represents statistics about events
type EventStats struct {
	TotalEvents         int64            `json:"total_events"`
	EventsByType        map[string]int64 `json:"events_by_type"`
	EventsBySource      map[string]int64 `json:"events_by_source"`
	RecentEvents        []Event          `json:"recent_events"`
	ActiveSubscriptions int              `json:"active_subscriptions"`
}

// NewEvent builds an event with source and data payload
func NewEvent(eventType EventType, source, message string, data map[string]interface{}) Event {
	return Event{
		Type:      eventType,
		Source:    source,
		Message:   message,
		Data:      data,
		Priority:  PriorityNormal,
		Timestamp: time.Now(),
	}
}
