//go:build !stdjson

package jsoncompat

import "github.com/bytedance/sonic"

var api = sonic.ConfigStd

// Marshal encodes v with sonic using standard library compatible settings.
func Marshal(v any) ([]byte, error) { return api.Marshal(v) }

// Unmarshal decodes data with sonic using standard library compatible settings.
func Unmarshal(data []byte, v any) error { return api.Unmarshal(data, v) }
