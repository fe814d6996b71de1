package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Record is the flat, shareable view of the visualizer state. Zero fields
// mean "leave as is" when applied.
type Record struct {
	Mode          string `json:"mode,omitempty"`
	ColorScheme   string `json:"colorScheme,omitempty"`
	ParticleCount int    `json:"particleCount,omitempty"`
}

// EncodeShare renders r as base64 JSON, the form accepted by -config.
func EncodeShare(r Record) string {
	b, _ := json.Marshal(r)
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeShare(s string) (Record, error) {
	var r Record
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return r, fmt.Errorf("decode share string: %w", err)
	}
	if err := json.Unmarshal(raw, &r); err != nil {
		return r, fmt.Errorf("parse share config: %w", err)
	}
	return r, nil
}
