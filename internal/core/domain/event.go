package domain

import (
	"encoding/json"
	"fmt"
)

// EventType is the kind of a change notification.
type EventType string

// Event types published by the graph API.
// The application lifecycle events are accepted but carry nothing to sync.
const (
	EventSaved               EventType = "Saved"
	EventDeleted             EventType = "Deleted"
	EventApplicationReady    EventType = "ApplicationReadyEvent"
	EventApplicationShutdown EventType = "ApplicationShutdownEvent"
)

// IsValid returns true if the event type is recognised.
func (t EventType) IsValid() bool {
	switch t {
	case EventSaved, EventDeleted, EventApplicationReady, EventApplicationShutdown:
		return true
	default:
		return false
	}
}

// IsLifecycle reports whether the event only signals application state.
func (t EventType) IsLifecycle() bool {
	return t == EventApplicationReady || t == EventApplicationShutdown
}

// ChangeEvent is an inbound notification:
//
//	{"type":"Saved","body":{"nodes":[{"id":"...","type":{"id":"Concept","graph":{"id":"..."}}}]}}
type ChangeEvent struct {
	ID   string    `json:"id,omitempty"`
	Type EventType `json:"type"`
	Body EventBody `json:"body"`
}

// EventBody carries the changed nodes.
type EventBody struct {
	Nodes []EventNode `json:"nodes"`
}

// EventNode identifies one changed node.
type EventNode struct {
	ID   NodeID        `json:"id"`
	Type EventNodeType `json:"type"`
}

// EventNodeType is the node's type and the graph it belongs to.
type EventNodeType struct {
	ID    string     `json:"id"`
	Graph EventGraph `json:"graph"`
}

// EventGraph identifies a graph.
type EventGraph struct {
	ID GraphID `json:"id"`
}

// ParseChangeEvent decodes and validates an inbound event.
func ParseChangeEvent(data []byte) (ChangeEvent, error) {
	var event ChangeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return ChangeEvent{}, fmt.Errorf("%w: decode event: %v", ErrInvalidInput, err)
	}
	if err := event.Validate(); err != nil {
		return ChangeEvent{}, err
	}
	return event, nil
}

// Validate checks the event type is known.
func (e ChangeEvent) Validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidInput, e.Type)
	}
	return nil
}

// Refs returns the changed nodes as node references.
func (e ChangeEvent) Refs() []NodeRef {
	refs := make([]NodeRef, 0, len(e.Body.Nodes))
	for _, n := range e.Body.Nodes {
		refs = append(refs, NodeRef{ID: n.ID, TypeID: n.Type.ID, GraphID: n.Type.Graph.ID})
	}
	return refs
}

// NewChangeEvent builds an event from node references.
func NewChangeEvent(eventType EventType, refs ...NodeRef) ChangeEvent {
	nodes := make([]EventNode, 0, len(refs))
	for _, r := range refs {
		nodes = append(nodes, EventNode{
			ID:   r.ID,
			Type: EventNodeType{ID: r.TypeID, Graph: EventGraph{ID: r.GraphID}},
		})
	}
	return ChangeEvent{Type: eventType, Body: EventBody{Nodes: nodes}}
}
