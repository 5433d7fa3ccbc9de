package compiler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Spec is the user-facing generation request, decoded from JSON or YAML.
// Either Args (compact mode) or OperationType (pattern mode) must be set.
type Spec struct {
	Name            string    `json:"cpo_name" yaml:"cpo_name"`
	Args            []string  `json:"args" yaml:"args"`
	OperationType   string    `json:"operation_type" yaml:"operation_type"`
	Doxygen         bool      `json:"doxygen" yaml:"doxygen"`
	RuntimeDispatch *Dispatch `json:"runtime_dispatch" yaml:"runtime_dispatch"`
}

// Dispatch selects between named behavioral variants via an injected runtime
// parameter. Kind "bool" requires exactly two options; kind "string"
// requires at least two.
type Dispatch struct {
	Kind    string   `json:"type" yaml:"type"`
	Arg     string   `json:"dispatch_arg" yaml:"dispatch_arg"`
	Options []string `json:"options" yaml:"options"`
}

// DispatchConfigError reports an inconsistent runtime_dispatch block.
type DispatchConfigError struct {
	Reason string
}

func (e *DispatchConfigError) Error() string {
	return "runtime_dispatch: " + e.Reason
}

// ErrInvalidSpec is returned when neither args nor operation_type is present.
var ErrInvalidSpec = errors.New("invalid input format: use 'operation_type' for pattern mode or 'args' for compact mode")

// Format identifies the wire encoding of a spec document.
type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
)

// FormatFromName maps a --format flag value to a Format.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatAuto, fmt.Errorf("unsupported format: %s", name)
}

// DecodeSpec parses a spec document. FormatAuto tries JSON first and falls
// back to YAML, which also covers JSON documents fed through stdin.
func DecodeSpec(data []byte, format Format) (Spec, error) {
	var spec Spec
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &spec); err != nil {
			return Spec{}, fmt.Errorf("invalid JSON input: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return Spec{}, fmt.Errorf("invalid YAML input: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &spec); err != nil {
			if yerr := yaml.Unmarshal(data, &spec); yerr != nil {
				return Spec{}, fmt.Errorf("invalid spec input: %w", err)
			}
		}
	}
	if spec.Name == "" {
		return Spec{}, errors.New("spec is missing required key 'cpo_name'")
	}
	return spec, nil
}

func (d *Dispatch) validate() error {
	if d == nil {
		return nil
	}
	switch d.Kind {
	case "bool":
		if d.Arg == "" {
			return &DispatchConfigError{Reason: "type 'bool' requires a 'dispatch_arg' key"}
		}
		if d.Options == nil {
			// Default pair, matching the documented fallback labels.
			d.Options = []string{"first_tag", "second_tag"}
		}
		if len(d.Options) != 2 {
			return &DispatchConfigError{Reason: "'options' for 'bool' type must be an array of two strings"}
		}
	case "string":
		if d.Arg == "" {
			return &DispatchConfigError{Reason: "type 'string' requires a 'dispatch_arg' key"}
		}
		if len(d.Options) < 2 {
			return &DispatchConfigError{Reason: "'options' for 'string' type must be an array of at least two strings"}
		}
	default:
		return &DispatchConfigError{Reason: fmt.Sprintf("unknown dispatch type %q (want 'bool' or 'string')", d.Kind)}
	}
	return nil
}
