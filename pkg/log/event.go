package log

import (
	"strings"
	"time"
)

// Event represents a journal event emitted by a state container.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ContainerID uniquely identifies the container (UUID).
	ContainerID string `cbor:"2,keyasint"`

	// ContainerName is the optional human-readable container name.
	ContainerName string `cbor:"3,keyasint,omitempty"`

	// Kind tells whether the container holds a mapping or a scalar.
	Kind Kind `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// SubscriptionID identifies the listener handle (subscribe/unsubscribe only).
	SubscriptionID uint64 `cbor:"6,keyasint,omitempty"`

	// Keys lists the key-subset filter of a subscription, or the keys
	// touched by an update.
	Keys []string `cbor:"7,keyasint,omitempty"`

	// Payload is the partial update (update) or initial state (create).
	Payload any `cbor:"8,keyasint,omitempty"`

	// Listeners is the number of listeners notified (update) or
	// registered after the operation (subscribe/unsubscribe).
	Listeners int `cbor:"9,keyasint,omitempty"`
}

// Kind indicates the shape of the container state.
type Kind uint8

const (
	// KindMap is a container holding a key-value mapping.
	KindMap Kind = 0
	// KindValue is a container holding an opaque scalar.
	KindValue Kind = 1
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMap:
		return "MAP"
	case KindValue:
		return "VALUE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryCreate indicates a container was created.
	CategoryCreate Category = 0
	// CategorySubscribe indicates a listener was registered.
	CategorySubscribe Category = 1
	// CategoryUnsubscribe indicates a listener was removed.
	CategoryUnsubscribe Category = 2
	// CategoryUpdate indicates the state was mutated and listeners notified.
	CategoryUpdate Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryCreate:
		return "CREATE"
	case CategorySubscribe:
		return "SUBSCRIBE"
	case CategoryUnsubscribe:
		return "UNSUBSCRIBE"
	case CategoryUpdate:
		return "UPDATE"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory parses a case-insensitive category name.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(s) {
	case "create":
		return CategoryCreate, true
	case "subscribe", "sub":
		return CategorySubscribe, true
	case "unsubscribe", "unsub":
		return CategoryUnsubscribe, true
	case "update":
		return CategoryUpdate, true
	default:
		return 0, false
	}
}
