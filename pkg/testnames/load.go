// SPDX-License-Identifier: Apache-2.0

package testnames

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"sigs.k8s.io/yaml"
)

const schemaURL = "testnames.schema.json"

//go:embed schema.json
var schemaJSON []byte

type mappingFile struct {
	Benchmarks Mapping `json:"benchmarks"`
}

// LoadFile reads a mapping file, see Load.
func LoadFile(path string) (Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening test name mapping: %w", err)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("reading test name mapping %q: %w", path, err)
	}
	return m, nil
}

// Load reads a YAML (or JSON) mapping document of the form
//
//	benchmarks:
//	  SqlsrvConnectionBench: connection
//
// and validates it against the mapping schema.
func Load(r io.Reader) (Mapping, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	jsonDoc, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("converting YAML: %w", err)
	}

	if err := validate(jsonDoc); err != nil {
		return nil, err
	}

	var mf mappingFile
	if err := json.Unmarshal(jsonDoc, &mf); err != nil {
		return nil, fmt.Errorf("decoding mapping: %w", err)
	}
	return mf.Benchmarks, nil
}

func validate(doc []byte) error {
	schema, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return fmt.Errorf("reading mapping schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, schema); err != nil {
		return fmt.Errorf("adding mapping schema: %w", err)
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("compiling mapping schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("decoding mapping: %w", err)
	}

	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("invalid test name mapping: %w", err)
	}
	return nil
}
