// Package jsonlib provides a configurable JSON encoding/decoding layer.
// It defaults to github.com/bytedance/sonic but exposes the same seam the
// rest of the pipeline is written against, so a future swap (or a test that
// wants deterministic field ordering from encoding/json) is a one-line
// SetConfig call rather than a grep-and-replace.
//
// Usage:
//
//	import "github.com/pdnsq/dnsdbq/internal/jsonlib"
//
//	data, err := jsonlib.Marshal(v)
//	err = jsonlib.Unmarshal(data, &v)
package jsonlib

import (
	stdjson "encoding/json"
	"io"

	"github.com/bytedance/sonic"
)

// Encoder is the interface for streaming JSON encoding.
type Encoder interface {
	Encode(v any) error
}

// Decoder is the interface for streaming JSON decoding.
type Decoder interface {
	Decode(v any) error
}

// Config holds the JSON encoding/decoding functions.
type Config struct {
	Marshal       func(v any) ([]byte, error)
	MarshalIndent func(v any, prefix, indent string) ([]byte, error)
	Unmarshal     func(data []byte, v any) error
	NewEncoder    func(w io.Writer) Encoder
	NewDecoder    func(r io.Reader) Decoder
}

// SonicConfig returns the default configuration, backed by sonic.
func SonicConfig() Config {
	api := sonic.ConfigDefault
	return Config{
		Marshal:       api.Marshal,
		MarshalIndent: api.MarshalIndent,
		Unmarshal:     api.Unmarshal,
		NewEncoder: func(w io.Writer) Encoder {
			return api.NewEncoder(w)
		},
		NewDecoder: func(r io.Reader) Decoder {
			return api.NewDecoder(r)
		},
	}
}

// StdConfig returns a configuration backed by encoding/json, useful in tests
// that depend on its stable map-key ordering.
func StdConfig() Config {
	return Config{
		Marshal:       stdjson.Marshal,
		MarshalIndent: stdjson.MarshalIndent,
		Unmarshal:     stdjson.Unmarshal,
		NewEncoder: func(w io.Writer) Encoder {
			return stdjson.NewEncoder(w)
		},
		NewDecoder: func(r io.Reader) Decoder {
			return stdjson.NewDecoder(r)
		},
	}
}

var config = SonicConfig()

// SetConfig replaces the global JSON configuration.
func SetConfig(c Config) { config = c }

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) { return config.Marshal(v) }

// MarshalIndent is like Marshal but applies Indent to format the output.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return config.MarshalIndent(v, prefix, indent)
}

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error { return config.Unmarshal(data, v) }

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) Encoder { return config.NewEncoder(w) }

// NewDecoder returns a new Decoder that reads from r.
func NewDecoder(r io.Reader) Decoder { return config.NewDecoder(r) }

// RawMessage is a raw encoded JSON value.
type RawMessage = stdjson.RawMessage
