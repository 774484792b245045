package codec

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONCodec handles JSON scripts and snapshots
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse reads a script from JSON
func (c *JSONCodec) Parse(r io.Reader) (*Script, error) {
	var script Script
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&script); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &script, nil
}

// Export writes a snapshot as indented JSON
func (c *JSONCodec) Export(snapshot *Snapshot, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(snapshot); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
