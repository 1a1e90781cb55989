package command

import "fmt"

// FailureKind classifies a validation failure.
type FailureKind string

const (
	// FailureEnum means a value was not in its closed set.
	FailureEnum FailureKind = "enum"
	// FailureType means a field held the wrong JSON primitive type.
	FailureType FailureKind = "type"
	// FailureMalformed covers everything structural: unparseable JSON,
	// missing required fields, out-of-range numbers.
	FailureMalformed FailureKind = "malformed"
)

// Failure is one field-level validation failure. Failures are reported in
// the order the validator visits fields.
type Failure struct {
	// Path is the dotted field path, e.g. "chartUpdate.titlePosition".
	Path string
	// Kind is the failure classification.
	Kind FailureKind
	// Got is the received value, rendered as a string. Set for enum and
	// type failures.
	Got string
	// Allowed is the full accepted set for enum failures.
	Allowed []string
	// Detail is an operator-facing note for malformed failures.
	Detail string
}

func (f Failure) String() string {
	switch f.Kind {
	case FailureEnum:
		return fmt.Sprintf("%s: %q not in %v", f.Path, f.Got, f.Allowed)
	case FailureType:
		return fmt.Sprintf("%s: wrong type (got %s)", f.Path, f.Got)
	default:
		return fmt.Sprintf("%s: %s", f.Path, f.Detail)
	}
}
