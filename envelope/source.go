package envelope

import (
	"encoding/json"
	"errors"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Source recognizes one envelope format and extracts the routing key and
// payload from it.
//
// Sources are matched with their Discriminator before Parse is called, so
// Parse only runs on envelopes that already look right.
//
// Example:
//
//	type legacySource struct{}
//
//	func (legacySource) Name() string { return "legacy" }
//
//	func (legacySource) Discriminator() envelope.Discriminator {
//	    return envelope.HasFields("cmd", "args")
//	}
//
//	func (legacySource) Parse(raw []byte) (envelope.Parsed, error) {
//	    var env struct {
//	        Cmd  string          `json:"cmd"`
//	        Args json.RawMessage `json:"args"`
//	    }
//	    if err := json.Unmarshal(raw, &env); err != nil {
//	        return envelope.Parsed{}, err
//	    }
//	    return envelope.Parsed{Key: env.Cmd, Payload: env.Args}, nil
//	}
type Source interface {
	// Name identifies the source in hooks and errors.
	Name() string

	// Discriminator is evaluated before Parse.
	Discriminator() Discriminator

	// Parse extracts the routing key and payload.
	Parse(raw []byte) (Parsed, error)
}

// Parsed is what a Source extracts from an envelope.
type Parsed struct {
	// Key selects the binding, and through it the message type.
	Key string

	// ID is the envelope's own identifier, if it has one.
	ID string

	// Payload is the JSON decoded into the bound message type.
	Payload json.RawMessage
}

// SourceFunc builds a Source from its parts:
//
//	in.AddSource(envelope.SourceFunc("legacy", envelope.HasFields("cmd"), parseLegacy))
func SourceFunc(name string, disc Discriminator, parse func([]byte) (Parsed, error)) Source {
	return &sourceFunc{name: name, disc: disc, parse: parse}
}

type sourceFunc struct {
	name  string
	disc  Discriminator
	parse func([]byte) (Parsed, error)
}

func (s *sourceFunc) Name() string                     { return s.name }
func (s *sourceFunc) Discriminator() Discriminator     { return s.disc }
func (s *sourceFunc) Parse(raw []byte) (Parsed, error) { return s.parse(raw) }

// TypedSource accepts the plain envelope
//
//	{"type": "users.create", "id": "optional", "payload": {...}}
func TypedSource() Source {
	return SourceFunc("typed", And(HasFields("type", "payload"), Not(HasFields("specversion"))), parseTyped)
}

var errMissingType = errors.New("missing type")

func parseTyped(raw []byte) (Parsed, error) {
	var env struct {
		Type    string          `json:"type"`
		ID      string          `json:"id"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return Parsed{}, err
	}
	if env.Type == "" {
		return Parsed{}, errMissingType
	}
	return Parsed{Key: env.Type, ID: env.ID, Payload: env.Payload}, nil
}

// CloudEventSource accepts CloudEvents in structured JSON mode. The event
// type is the routing key and the event data is the payload.
func CloudEventSource() Source {
	return SourceFunc("cloudevents", HasFields("specversion", "id", "source", "type"), parseCloudEvent)
}

func parseCloudEvent(raw []byte) (Parsed, error) {
	event := cloudevents.NewEvent()
	if err := json.Unmarshal(raw, &event); err != nil {
		return Parsed{}, err
	}
	if err := event.Validate(); err != nil {
		return Parsed{}, err
	}
	return Parsed{Key: event.Type(), ID: event.ID(), Payload: event.Data()}, nil
}
