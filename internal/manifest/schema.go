// Copyright 2015 Google Inc. All rights reserved
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package manifest

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaDoc []byte

// ValidateJSON checks raw manifest JSON against the embedded schema
// describing the wire shape in spec §6. Used as a round-trip safety
// net in tests (spec §8 property 7): any drift between the Go struct
// tags and the documented shape fails here instead of silently
// shipping a malformed manifest.
func ValidateJSON(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(schemaDoc, &doc); err != nil {
		return fmt.Errorf("manifest: invalid embedded schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("daemon-manifest.json", doc); err != nil {
		return fmt.Errorf("manifest: failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile("daemon-manifest.json")
	if err != nil {
		return fmt.Errorf("manifest: failed to compile schema: %w", err)
	}

	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("manifest: invalid JSON: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("manifest: schema validation failed: %w", err)
	}
	return nil
}
