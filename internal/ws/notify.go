package ws

import (
	"encoding/json"
	"time"
)

const (
	EventTaxonomyUpdated  = "taxonomy_updated"
	EventTaxonomyReloaded = "taxonomy_reloaded"
	EventProfileAdded     = "profile_added"
)

// Event tells clients which cached resources to refetch.
type Event struct {
	Type      string `json:"type"`
	Op        string `json:"op,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Key       string `json:"key,omitempty"`
	Industry  string `json:"industry,omitempty"`
	ID        string `json:"id,omitempty"`
	Revision  int64  `json:"revision,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Notifier turns domain changes into hub broadcasts.
type Notifier struct {
	hub *Hub
	now func() time.Time
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub, now: time.Now}
}

func (n *Notifier) Publish(evt Event) {
	if n == nil || n.hub == nil {
		return
	}
	if evt.Timestamp == "" {
		evt.Timestamp = n.now().UTC().Format(time.RFC3339)
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Broadcast(b)
}

func (n *Notifier) TaxonomyUpdated(op, kind, key, industry string, revision int64) {
	n.Publish(Event{Type: EventTaxonomyUpdated, Op: op, Kind: kind, Key: key, Industry: industry, Revision: revision})
}

func (n *Notifier) TaxonomyReloaded(revision int64) {
	n.Publish(Event{Type: EventTaxonomyReloaded, Revision: revision})
}

func (n *Notifier) ProfileAdded(id string) {
	n.Publish(Event{Type: EventProfileAdded, ID: id})
}
