package content

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
)

//go:embed data/default.json
var defaultTables []byte

// Decode reads a JSON content bundle.
func Decode(r io.Reader) (Tables, error) {
	var t Tables
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return Tables{}, fmt.Errorf("decode content: %w", err)
	}
	return t, nil
}

// Default returns the catalog built from the embedded content bundle.
func Default() (*Static, error) {
	t, err := Decode(bytes.NewReader(defaultTables))
	if err != nil {
		return nil, err
	}
	return NewStatic(t)
}
