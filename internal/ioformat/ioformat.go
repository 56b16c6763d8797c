// Package ioformat provides deterministic JSON (de)serialization for
// InputBundle and RunResult, grounded on the teacher's internal/dto package
// JSON-tag conventions: every wire type carries explicit json tags and
// round-trips byte-for-byte given the same value, since encoding/json
// already emits object keys in struct-field order and sorts map keys
// alphabetically, which is what cmd/defensecli and any future adapter rely
// on for stable output.
package ioformat

import (
	"encoding/json"
	"fmt"

	"github.com/noah-isme/defense-scheduler-core/internal/domain"
	"github.com/noah-isme/defense-scheduler-core/internal/runner"
)

// MarshalInputBundle renders bundle as indented, deterministic JSON.
func MarshalInputBundle(bundle domain.InputBundle) ([]byte, error) {
	return json.MarshalIndent(bundle, "", "  ")
}

// UnmarshalInputBundle parses an InputBundle from JSON produced by
// MarshalInputBundle (or any compatible caller).
func UnmarshalInputBundle(data []byte) (domain.InputBundle, error) {
	var bundle domain.InputBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return domain.InputBundle{}, fmt.Errorf("ioformat: decode input bundle: %w", err)
	}
	return bundle, nil
}

// MarshalRunResult renders a run result as indented, deterministic JSON
// matching spec §6's run_result shape.
func MarshalRunResult(result runner.Result) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

// UnmarshalRunResult parses a run result from JSON produced by
// MarshalRunResult.
func UnmarshalRunResult(data []byte) (runner.Result, error) {
	var result runner.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return runner.Result{}, fmt.Errorf("ioformat: decode run result: %w", err)
	}
	return result, nil
}

// MarshalRunRequestParams renders an arbitrary params map deterministically
// (encoding/json already sorts map[string]T keys, so this is a thin,
// explicitly-named wrapper other packages can call instead of reaching for
// json.Marshal directly on a bare map).
func MarshalRunRequestParams(params map[string]float64) ([]byte, error) {
	return json.Marshal(params)
}
