package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// CollectionChangedMessage tells the worker that a stored collection was
// rewritten. It carries no data; the worker reads the current value from
// storage, so duplicate or reordered messages are harmless.
type CollectionChangedMessage struct {
	Collection string    `json:"collection"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewCollectionChangedMessage(collection string) *CollectionChangedMessage {
	return &CollectionChangedMessage{
		Collection: collection,
		Timestamp:  time.Now(),
	}
}

func (m *CollectionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func CollectionChangedMessageFromJSON(data []byte) (*CollectionChangedMessage, error) {
	var msg CollectionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Collection == "" {
		return nil, errors.New("message has no collection")
	}
	return &msg, nil
}
