// Package schema validates JSON documents against JSON Schema.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Compiled schemas are reused; the structured-output schemas are fixed per
// operation.
var cache sync.Map // string -> *jsonschema.Schema

func Compile(schemaJSON json.RawMessage) (*jsonschema.Schema, error) {
	key := string(schemaJSON)
	if s, ok := cache.Load(key); ok {
		return s.(*jsonschema.Schema), nil
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("schema resource: %w", err)
	}
	s, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	cache.Store(key, s)
	return s, nil
}

func Validate(schemaJSON json.RawMessage, raw json.RawMessage) error {
	if len(schemaJSON) == 0 {
		return nil
	}
	if len(raw) == 0 {
		return fmt.Errorf("empty json")
	}

	s, err := Compile(schemaJSON)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	return s.Validate(doc)
}
