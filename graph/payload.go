package graph

import (
	"errors"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/payloadregistry"
	"github.com/goccy/go-json"
)

// Payloads holds this package's payload registrations; semstreams keeps
// payload registries as instances rather than a component-global.
var Payloads = payloadregistry.New()

func init() {
	err := Payloads.Register(&payloadregistry.Registration{
		Domain:      "graph",
		Category:    "code-entity",
		Version:     "v1",
		Description: "Code entity payload for graph ingestion with triples",
		Factory:     func() any { return &EntityPayload{} },
	})
	if err != nil {
		panic("failed to register EntityPayload: " + err.Error())
	}
}

// EntityType is the message type for code entity payloads.
var EntityType = message.Type{Domain: "graph", Category: "code-entity", Version: "v1"}

// EntityPayload implements message.Payload for code entity ingestion. One
// payload carries every triple of one analyzed source file, tagged with
// the run that produced it.
type EntityPayload struct {
	EntityID_  string           `json:"id"`
	RunID      string           `json:"run_id"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (e *EntityPayload) EntityID() string          { return e.EntityID_ }
func (e *EntityPayload) Triples() []message.Triple { return e.TripleData }
func (e *EntityPayload) Schema() message.Type      { return EntityType }

func (e *EntityPayload) Validate() error {
	if e.EntityID_ == "" {
		return errors.New("entity ID is required")
	}
	return nil
}

func (e *EntityPayload) MarshalJSON() ([]byte, error) {
	type Alias EntityPayload
	return json.Marshal((*Alias)(e))
}

func (e *EntityPayload) UnmarshalJSON(data []byte) error {
	type Alias EntityPayload
	return json.Unmarshal(data, (*Alias)(e))
}
