package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec. It is the portable choice for
// state that tools outside the device need to read.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// ID returns IDJSON.
func (JSON) ID() uint8 { return IDJSON }

// Default is the codec used for newly written records.
var Default Codec = GoJSON{}
