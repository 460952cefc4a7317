// Package codec encodes the persisted device state.
//
// Stored records carry the codec id in their header, so a device can read
// state written with a different codec than it currently writes.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
	// ID is the stable one-byte id written into record headers.
	ID() uint8
}

const (
	// IDJSON identifies the standard-library JSON codec.
	IDJSON uint8 = 1
	// IDGoJSON identifies the go-json codec.
	IDGoJSON uint8 = 2
)

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json", "":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// ByID returns a built-in codec by its header id.
func ByID(id uint8) (Codec, bool) {
	switch id {
	case IDJSON:
		return JSON{}, true
	case IDGoJSON:
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
