package protocol

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Issue pinpoints one validation failure.
type Issue struct {
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// ValidationError reports every reason a submitted action was rejected.
// Validation is read-only; an error never implies a state change.
type ValidationError struct {
	Action string  `json:"action"`
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	reasons := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		if issue.Field != "" {
			reasons[i] = issue.Field + ": " + issue.Reason
		} else {
			reasons[i] = issue.Reason
		}
	}
	return fmt.Sprintf("invalid action %q: %s", e.Action, strings.Join(reasons, "; "))
}

// ValidateAction checks a submitted action against its decision point, in
// order: the decision id must match, the action name must be a member of the
// legal set, and the args must satisfy the declared schema (required fields
// present, types and ranges correct, no extraneous fields). Semantic
// constraints beyond the schema belong to the applier.
func ValidateAction(point DecisionPoint, act Action) *ValidationError {
	var issues []Issue

	if act.SchemaVersion != SchemaVersion {
		issues = append(issues, Issue{
			Field:  "schema_version",
			Reason: fmt.Sprintf("want %d, got %d", SchemaVersion, act.SchemaVersion),
		})
	}
	if act.DecisionID != point.DecisionID {
		issues = append(issues, Issue{
			Field:  "decision_id",
			Reason: fmt.Sprintf("want %q, got %q", point.DecisionID, act.DecisionID),
		})
	}

	var schema *ArgSchema
	for i := range point.LegalActions {
		if point.LegalActions[i].Name == act.Name {
			schema = &point.LegalActions[i].Args
			break
		}
	}
	if schema == nil {
		names := make([]string, len(point.LegalActions))
		for i, la := range point.LegalActions {
			names[i] = la.Name
		}
		issues = append(issues, Issue{
			Field:  "action",
			Reason: fmt.Sprintf("%q is not in the legal set [%s]", act.Name, strings.Join(names, ", ")),
		})
		return &ValidationError{Action: act.Name, Issues: issues}
	}

	issues = append(issues, checkObject(schema.Fields, "", act.Args)...)
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Action: act.Name, Issues: issues}
}

func checkObject(fields []Field, path string, obj map[string]any) []Issue {
	var issues []Issue

	declared := make(map[string]bool, len(fields))
	for _, f := range fields {
		declared[f.Name] = true
		v, ok := obj[f.Name]
		if !ok {
			if f.Required {
				issues = append(issues, Issue{Field: join(path, f.Name), Reason: "required field missing"})
			}
			continue
		}
		issues = append(issues, checkValue(f, join(path, f.Name), v)...)
	}

	// Map iteration order is random; report extras in a stable order.
	var extras []string
	for name := range obj {
		if !declared[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	for _, name := range extras {
		issues = append(issues, Issue{Field: join(path, name), Reason: "extraneous field"})
	}
	return issues
}

func checkValue(f Field, path string, v any) []Issue {
	switch f.Type {
	case FieldInt:
		n, ok := asInt(v)
		if !ok {
			return []Issue{{Field: path, Reason: fmt.Sprintf("want int, got %s", typeName(v))}}
		}
		if f.Min != nil && n < *f.Min {
			return []Issue{{Field: path, Reason: fmt.Sprintf("%d is below the minimum %d", n, *f.Min)}}
		}
		if f.Max != nil && n > *f.Max {
			return []Issue{{Field: path, Reason: fmt.Sprintf("%d is above the maximum %d", n, *f.Max)}}
		}
		if len(f.IntEnum) > 0 && !containsInt(f.IntEnum, n) {
			return []Issue{{Field: path, Reason: fmt.Sprintf("%d is not one of %v", n, f.IntEnum)}}
		}
	case FieldString:
		s, ok := v.(string)
		if !ok {
			return []Issue{{Field: path, Reason: fmt.Sprintf("want string, got %s", typeName(v))}}
		}
		if len(f.Enum) > 0 && !containsString(f.Enum, s) {
			return []Issue{{Field: path, Reason: fmt.Sprintf("%q is not one of [%s]", s, strings.Join(f.Enum, ", "))}}
		}
	case FieldBool:
		if _, ok := v.(bool); !ok {
			return []Issue{{Field: path, Reason: fmt.Sprintf("want bool, got %s", typeName(v))}}
		}
	case FieldArray:
		items, ok := v.([]any)
		if !ok {
			return []Issue{{Field: path, Reason: fmt.Sprintf("want array, got %s", typeName(v))}}
		}
		// Min/Max bound the element count for arrays.
		if f.Min != nil && len(items) < *f.Min {
			return []Issue{{Field: path, Reason: fmt.Sprintf("%d elements is below the minimum %d", len(items), *f.Min)}}
		}
		if f.Max != nil && len(items) > *f.Max {
			return []Issue{{Field: path, Reason: fmt.Sprintf("%d elements is above the maximum %d", len(items), *f.Max)}}
		}
		if f.Elem == nil {
			return nil
		}
		var issues []Issue
		for i, item := range items {
			issues = append(issues, checkValue(*f.Elem, fmt.Sprintf("%s[%d]", path, i), item)...)
		}
		return issues
	case FieldObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return []Issue{{Field: path, Reason: fmt.Sprintf("want object, got %s", typeName(v))}}
		}
		return checkObject(f.Fields, path, obj)
	}
	return nil
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// asInt accepts native ints and integral JSON numbers.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n), true
		}
	}
	return 0, false
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

func containsInt(set []int, n int) bool {
	for _, m := range set {
		if m == n {
			return true
		}
	}
	return false
}

func containsString(set []string, s string) bool {
	for _, m := range set {
		if m == s {
			return true
		}
	}
	return false
}
