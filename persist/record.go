package persist

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/fxcore/codec"
	"github.com/hupe1980/fxcore/internal/hash"
)

var (
	// ErrCorrupt is returned when a stored record fails validation.
	ErrCorrupt = errors.New("persist: corrupt record")
	// ErrVersion is returned for records written by a newer format.
	ErrVersion = errors.New("persist: unsupported record version")
)

const (
	magic         = "FXST"
	formatVersion = 1
	headerSize    = 16
)

// Record is the persisted device state.
type Record struct {
	Preset     int       `json:"preset"`
	PresetName string    `json:"preset_name,omitempty"`
	Knobs      []float32 `json:"knobs,omitempty"`
	SavedAt    time.Time `json:"saved_at"`
}

// Encode frames rec with the given codec and compression.
func Encode(rec Record, c codec.Codec, comp Compression) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}

	payload, err := c.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("persist: encode: %w", err)
	}

	block, err := compressBlock(payload, comp)
	if err != nil {
		return nil, fmt.Errorf("persist: compress: %w", err)
	}

	out := make([]byte, headerSize+len(block))
	copy(out[0:4], magic)
	out[4] = formatVersion
	out[5] = c.ID()
	out[6] = uint8(comp)
	binary.LittleEndian.PutUint32(out[8:], uint32(len(block)))
	binary.LittleEndian.PutUint32(out[12:], hash.CRC32C(block))
	copy(out[headerSize:], block)
	return out, nil
}

// Decode validates and decodes a framed record. The codec and compression
// are taken from the header.
func Decode(data []byte) (Record, error) {
	var rec Record

	if len(data) < headerSize || string(data[0:4]) != magic {
		return rec, fmt.Errorf("%w: bad header", ErrCorrupt)
	}
	if data[4] > formatVersion {
		return rec, fmt.Errorf("%w: %d", ErrVersion, data[4])
	}

	c, ok := codec.ByID(data[5])
	if !ok {
		return rec, fmt.Errorf("%w: unknown codec %d", ErrCorrupt, data[5])
	}

	length := binary.LittleEndian.Uint32(data[8:])
	block := data[headerSize:]
	if uint32(len(block)) != length {
		return rec, fmt.Errorf("%w: length %d, have %d", ErrCorrupt, length, len(block))
	}
	if hash.CRC32C(block) != binary.LittleEndian.Uint32(data[12:]) {
		return rec, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	payload, err := decompressBlock(block, Compression(data[6]))
	if err != nil {
		return rec, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := c.Unmarshal(payload, &rec); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return rec, nil
}
