package session

import (
	"github.com/go-json-experiment/json"
)

// EncodeJSON serializes a CompileOutput the way the CLI external
// collaborator (spec.md §1/§6) consumes it over its process boundary:
// one JSON object carrying the generated js/css pair and the
// diagnostic list, errors first.
func EncodeJSON(out CompileOutput) ([]byte, error) {
	return json.Marshal(out)
}

// DecodeJSON is EncodeJSON's inverse, for round-tripping a previously
// serialized result (used by tests and by any future caller that wants
// to replay a cached CompileOutput without recompiling).
func DecodeJSON(data []byte) (CompileOutput, error) {
	var out CompileOutput
	err := json.Unmarshal(data, &out)
	return out, err
}
