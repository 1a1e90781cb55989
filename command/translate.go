package command

import (
	"fmt"
	"strings"
)

// Fallback wordings for failures that have no field-specific explanation.
const (
	wrongTypeSentence = "I could not understand part of your request, please try rephrasing it."
	retrySentence     = "I was not able to interpret that request, please try asking again in different words."
)

// Translate maps validation failures to a single user-facing sentence.
// Failures arrive in validator-reported order and the first one wins;
// later failures are diagnostics only. The returned sentence never exposes
// field-path syntax and is never empty.
func Translate(failures []Failure) string {
	if len(failures) == 0 {
		return retrySentence
	}
	f := failures[0]

	if f.Kind == FailureEnum {
		switch {
		case strings.Contains(f.Path, "titlePosition"):
			return fmt.Sprintf("%q is not a valid title position, a chart title can only be placed %q or %q.", f.Got, "top", "bottom")
		case strings.Contains(f.Path, "aggregation"):
			return fmt.Sprintf("%q is not a valid aggregation, the available aggregations are sum, avg, count, min and max.", f.Got)
		case strings.Contains(f.Path, "sortOrder"):
			return fmt.Sprintf("%q is not a valid sort order, use %q for ascending or %q for descending.", f.Got, "asc", "desc")
		case strings.Contains(f.Path, "type"):
			return fmt.Sprintf("%q is not a chart type I recognize, try one of the supported types such as bar, line, area, pie, kpi or table.", f.Got)
		default:
			return fmt.Sprintf("%q is not valid, available options: %s.", f.Got, strings.Join(f.Allowed, ", "))
		}
	}

	if f.Kind == FailureType {
		return wrongTypeSentence
	}

	return retrySentence
}
