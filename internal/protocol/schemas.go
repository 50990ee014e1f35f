package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var schemaFiles = map[string]string{
	TypeWelcome:  "welcome.schema.json",
	TypeGenerate: "generate.schema.json",
	TypeWorld:    "world.schema.json",
	TypeError:    "error.schema.json",
}

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

func compileSchemas() {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	out := make(map[string]*jsonschema.Schema, len(schemaFiles))
	for typ, name := range schemaFiles {
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			schemasErr = err
			return
		}
		url := "mem://schemas/" + name
		if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
			schemasErr = fmt.Errorf("schema %s: %w", name, err)
			return
		}
		s, err := c.Compile(url)
		if err != nil {
			schemasErr = fmt.Errorf("schema %s: %w", name, err)
			return
		}
		out[typ] = s
	}
	schemas = out
}

// Schema returns the compiled schema for a message type.
func Schema(msgType string) (*jsonschema.Schema, error) {
	schemasOnce.Do(compileSchemas)
	if schemasErr != nil {
		return nil, schemasErr
	}
	s, ok := schemas[msgType]
	if !ok {
		return nil, fmt.Errorf("no schema for message type %q", msgType)
	}
	return s, nil
}

// Validate checks raw JSON against the schema of its declared type.
func Validate(raw []byte) error {
	base, err := DecodeBase(raw)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	s, err := Schema(base.Type)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%s: %s", strings.ToLower(base.Type), err)
	}
	return nil
}

// ValidateValue marshals v and validates the result.
func ValidateValue(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return Validate(raw)
}
