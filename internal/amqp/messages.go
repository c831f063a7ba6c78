package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ImportRequestMessage asks a worker to refresh the SQLite snapshot from a
// remote CSV.
type ImportRequestMessage struct {
	SourceURL   string    `json:"source_url"`
	RequestedBy string    `json:"requested_by,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewImportRequestMessage creates a request stamped with the current time.
func NewImportRequestMessage(sourceURL, requestedBy string) *ImportRequestMessage {
	return &ImportRequestMessage{
		SourceURL:   sourceURL,
		RequestedBy: requestedBy,
		Timestamp:   time.Now().UTC(),
	}
}

// Validate checks that the source is an absolute http(s) URL.
func (m *ImportRequestMessage) Validate() error {
	if m.SourceURL == "" {
		return errors.New("source_url is required")
	}
	u, err := url.Parse(m.SourceURL)
	if err != nil {
		return fmt.Errorf("source_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source_url %q must be an absolute http(s) URL", m.SourceURL)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ImportRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ImportRequestMessageFromJSON decodes and validates a message.
func ImportRequestMessageFromJSON(data []byte) (*ImportRequestMessage, error) {
	var msg ImportRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
