package command

import (
	"encoding/json"
	"fmt"

	"github.com/plotdeck/plotdeck/dashboard"
)

// parser accumulates validation failures while walking a decoded command
// object. Values come from a json.Decoder with UseNumber, so JSON numbers
// arrive as json.Number and numeric strings stay strings. No coercion.
type parser struct {
	failures []Failure
}

func (p *parser) fail(f Failure) {
	p.failures = append(p.failures, f)
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// renderValue produces a short human-readable rendering of a JSON value
// for failure reporting.
func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return fmt.Sprintf("%t", val)
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%v", val)
	}
}

// str reads a required or optional string field. Missing required fields
// and non-string values are recorded as failures.
func (p *parser) str(obj map[string]any, prefix, key string, required bool) (string, bool) {
	v, present := obj[key]
	if !present || v == nil {
		if required {
			p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureMalformed, Detail: "missing required field"})
		}
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureType, Got: renderValue(v)})
		return "", false
	}
	return s, true
}

// optStr reads an optional string, returning "" when absent.
func (p *parser) optStr(obj map[string]any, prefix, key string) string {
	s, _ := p.str(obj, prefix, key, false)
	return s
}

// optStrPtr reads an optional string as a patch pointer.
func (p *parser) optStrPtr(obj map[string]any, prefix, key string) *string {
	s, ok := p.str(obj, prefix, key, false)
	if !ok {
		return nil
	}
	return &s
}

// enum reads a field that must exactly match one of the allowed values.
// Matching is case-sensitive; near-misses are enum failures carrying the
// received value and the full accepted set.
func (p *parser) enum(obj map[string]any, prefix, key string, allowed []string, required bool) (string, bool) {
	v, present := obj[key]
	if !present || v == nil {
		if required {
			p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureMalformed, Detail: "missing required field", Allowed: allowed})
		}
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureType, Got: renderValue(v)})
		return "", false
	}
	for _, a := range allowed {
		if s == a {
			return s, true
		}
	}
	p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureEnum, Got: s, Allowed: allowed})
	return "", false
}

// optEnum reads an optional enum field.
func (p *parser) optEnum(obj map[string]any, prefix, key string, allowed []string) (string, bool) {
	if _, present := obj[key]; !present {
		return "", false
	}
	return p.enum(obj, prefix, key, allowed, false)
}

// optNumber reads an optional numeric field. Numeric strings are type
// failures, not numbers.
func (p *parser) optNumber(obj map[string]any, prefix, key string) *float64 {
	v, present := obj[key]
	if !present || v == nil {
		return nil
	}
	n, ok := v.(json.Number)
	if !ok {
		p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureType, Got: renderValue(v)})
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureMalformed, Got: n.String(), Detail: "number out of range"})
		return nil
	}
	return &f
}

// gridInt reads an optional geometry field: a non-negative integer within
// the grid bounds.
func (p *parser) gridInt(obj map[string]any, prefix, key string) *int {
	v, present := obj[key]
	if !present || v == nil {
		return nil
	}
	n, ok := v.(json.Number)
	if !ok {
		p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureType, Got: renderValue(v)})
		return nil
	}
	i, err := n.Int64()
	if err != nil {
		p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureType, Got: n.String()})
		return nil
	}
	if i < 0 || i > maxGridUnits {
		p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureMalformed, Got: n.String(), Detail: fmt.Sprintf("grid units must be between 0 and %d", maxGridUnits)})
		return nil
	}
	out := int(i)
	return &out
}

// optBool reads an optional boolean field.
func (p *parser) optBool(obj map[string]any, prefix, key string) *bool {
	v, present := obj[key]
	if !present || v == nil {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureType, Got: renderValue(v)})
		return nil
	}
	return &b
}

// stringList reads a required list of strings.
func (p *parser) stringList(obj map[string]any, prefix, key string, required bool) []string {
	v, present := obj[key]
	if !present || v == nil {
		if required {
			p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureMalformed, Detail: "missing required field"})
		}
		return nil
	}
	return p.coerceStringList(v, joinPath(prefix, key))
}

// optStringList reads an optional list of strings, nil when absent.
func (p *parser) optStringList(obj map[string]any, prefix, key string) []string {
	v, present := obj[key]
	if !present || v == nil {
		return nil
	}
	return p.coerceStringList(v, joinPath(prefix, key))
}

func (p *parser) coerceStringList(v any, path string) []string {
	list, ok := v.([]any)
	if !ok {
		p.fail(Failure{Path: path, Kind: FailureType, Got: renderValue(v)})
		return nil
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			p.fail(Failure{Path: fmt.Sprintf("%s[%d]", path, i), Kind: FailureType, Got: renderValue(item)})
			return nil
		}
		out = append(out, s)
	}
	return out
}

// yAxis reads the yAxis union: a single string or an ordered list of
// strings.
func (p *parser) yAxis(obj map[string]any, prefix, key string) dashboard.YAxis {
	v, present := obj[key]
	if !present || v == nil {
		return nil
	}
	if s, ok := v.(string); ok {
		return dashboard.YAxis{s}
	}
	if list := p.coerceStringList(v, joinPath(prefix, key)); list != nil {
		return dashboard.YAxis(list)
	}
	return nil
}

// object reads a nested object field.
func (p *parser) object(obj map[string]any, prefix, key string, required bool) (map[string]any, bool) {
	v, present := obj[key]
	if !present || v == nil {
		if required {
			p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureMalformed, Detail: "missing required field"})
		}
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		p.fail(Failure{Path: joinPath(prefix, key), Kind: FailureType, Got: renderValue(v)})
		return nil, false
	}
	return m, true
}
