package models

// Record is a raw record fetched from the audit topic.
type Record struct {
	Key   []byte
	Value []byte
	Topic string
}

// NotificationEvent is the payload published on the outcome channels
// and mirrored to the audit topic after each pipeline run concludes.
type NotificationEvent struct {
	Event     string `json:"event"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// AuditEntry is the persisted form of a NotificationEvent consumed
// from the audit topic.
type AuditEntry struct {
	EventID   string `json:"event_id" bson:"_id"`
	Event     string `json:"event" bson:"event"`
	Type      string `json:"type" bson:"type"`
	Timestamp string `json:"timestamp" bson:"timestamp"`
	Topic     string `json:"topic" bson:"topic"`
}

// Transform maps a consumed event into its persisted audit form.
func (e *NotificationEvent) Transform(eventID, topic string) AuditEntry {
	return AuditEntry{
		EventID:   eventID,
		Event:     e.Event,
		Type:      e.Type,
		Timestamp: e.Timestamp,
		Topic:     topic,
	}
}
