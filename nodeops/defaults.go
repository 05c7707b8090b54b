package nodeops

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/c360/scriptbridge/errors"
	"github.com/c360/scriptbridge/scriptgraph"
)

// PortFailure names one port whose default could not be applied and why
type PortFailure struct {
	Port   string `json:"port"`
	Reason string `json:"reason"`
}

// DefaultsResult reports a per-port breakdown of an ApplyDefaults call.
// A partially successful call is normal: one bad value never blocks the
// rest of the batch.
type DefaultsResult struct {
	Applied []string      `json:"successful_ports"`
	Failed  []PortFailure `json:"failed_ports,omitempty"`
}

// ApplyDefaults sets literal default values on the node's input ports.
// Ports are processed in name order so the result is deterministic. A
// port takes a default only when it exists, is an input, is editable,
// and is not connected; the value must coerce to the port's pin type.
func ApplyDefaults(node *scriptgraph.Node, defaults map[string]any) DefaultsResult {
	names := make([]string, 0, len(defaults))
	for name := range defaults {
		names = append(names, name)
	}
	sort.Strings(names)

	var result DefaultsResult
	for _, name := range names {
		if err := applyDefault(node, name, defaults[name]); err != nil {
			result.Failed = append(result.Failed, PortFailure{Port: name, Reason: err.Error()})
			continue
		}
		result.Applied = append(result.Applied, name)
	}
	return result
}

func applyDefault(node *scriptgraph.Node, name string, value any) error {
	port := node.Port(name)
	if port == nil {
		return errors.ErrPortNotFound
	}
	if port.Direction == scriptgraph.DirectionOutput {
		return errors.ErrPortIsOutput
	}
	if port.Type.Category == scriptgraph.PinExec {
		return errors.ErrPortNotEditable
	}
	if port.Connected() {
		return errors.ErrPortConnected
	}

	literal, err := CoerceDefault(value, port.Type)
	if err != nil {
		return err
	}
	port.DefaultValue = literal
	return nil
}

// CoerceDefault turns a decoded JSON value into the literal string form
// the host stores on a pin. Strings pass through verbatim; numbers
// format locale-independently; struct values must match one of the
// known struct layouts.
func CoerceDefault(value any, t scriptgraph.PinType) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return formatFloat(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case map[string]any:
		return coerceStruct(v, t)
	default:
		return "", fmt.Errorf("%w: %T", errors.ErrNoCoercionRule, value)
	}
}

// coerceStruct renders the struct layouts pins commonly default:
// vector, rotator, vector2d, and linearcolor. Missing components take
// the layout's default, but a value whose fields match no component of
// the layout is an unrecognized shape, not an all-defaults struct.
func coerceStruct(fields map[string]any, t scriptgraph.PinType) (string, error) {
	matched := 0
	field := func(name string, fallback float64) string {
		v, ok := lookupFloat(fields, name)
		if !ok {
			return formatFloat(fallback)
		}
		matched++
		return formatFloat(v)
	}

	var literal string
	shape := strings.ToLower(t.SubType.Name)
	switch shape {
	case "vector":
		literal = fmt.Sprintf("(X=%s,Y=%s,Z=%s)",
			field("x", 0), field("y", 0), field("z", 0))
	case "rotator":
		literal = fmt.Sprintf("(Pitch=%s,Yaw=%s,Roll=%s)",
			field("pitch", 0), field("yaw", 0), field("roll", 0))
	case "vector2d":
		literal = fmt.Sprintf("(X=%s,Y=%s)",
			field("x", 0), field("y", 0))
	case "linearcolor":
		literal = fmt.Sprintf("(R=%s,G=%s,B=%s,A=%s)",
			field("r", 0), field("g", 0), field("b", 0), field("a", 1))
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnsupportedShape, t.SubType.Name)
	}

	if matched == 0 && len(fields) > 0 {
		return "", fmt.Errorf("%w: value fields match no %s component",
			errors.ErrUnsupportedShape, shape)
	}
	return literal, nil
}

func lookupFloat(fields map[string]any, name string) (float64, bool) {
	for key, raw := range fields {
		if !strings.EqualFold(key, name) {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		}
	}
	return 0, false
}

// formatFloat renders a number the same way regardless of host locale,
// with no exponent and no trailing zeros
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
