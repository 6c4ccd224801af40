// file: internals/features/records/dependencies/condition.go
package dependencies

import (
	"strings"

	"auditku_backend/internals/helpers/answer"
)

type Operator string

const (
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "not_equals"
	OpIn        Operator = "in"
	OpNotIn     Operator = "not_in"
	OpExists    Operator = "exists"
	OpGt        Operator = "gt"
	OpLt        Operator = "lt"
	OpGte       Operator = "gte"
	OpLte       Operator = "lte"
	OpContains  Operator = "contains"
)

// Values = nilai record saat ini, key = field key (atau question id untuk form).
type Values map[string]answer.Value

// Condition: perbandingan atomik (field, operator, value).
type Condition struct {
	FieldKey string       `json:"field_key"`
	Operator Operator     `json:"operator"`
	Value    answer.Value `json:"value"`
}

// Evaluate menilai satu kondisi terhadap nilai record.
// Operator tak dikenal atau field_key kosong → false.
func Evaluate(cond Condition, values Values) bool {
	key := strings.TrimSpace(cond.FieldKey)
	if key == "" {
		return false
	}
	current := values[key] // missing key = null

	switch Operator(strings.ToLower(strings.TrimSpace(string(cond.Operator)))) {
	case OpEquals:
		return current.String() == cond.Value.String()
	case OpNotEquals:
		return current.String() != cond.Value.String()
	case OpIn:
		return containsString(cond.Value.Strings(), current.String())
	case OpNotIn:
		return !containsString(cond.Value.Strings(), current.String())
	case OpExists:
		return !current.IsEmpty()
	case OpGt:
		return compareNumbers(current, cond.Value, func(a, b float64) bool { return a > b })
	case OpLt:
		return compareNumbers(current, cond.Value, func(a, b float64) bool { return a < b })
	case OpGte:
		return compareNumbers(current, cond.Value, func(a, b float64) bool { return a >= b })
	case OpLte:
		return compareNumbers(current, cond.Value, func(a, b float64) bool { return a <= b })
	case OpContains:
		return strings.Contains(strings.ToLower(current.String()), strings.ToLower(cond.Value.String()))
	default:
		return false
	}
}

// Non-numeric di salah satu sisi → false (fail closed).
func compareNumbers(left, right answer.Value, cmp func(a, b float64) bool) bool {
	a, ok := left.Number()
	if !ok {
		return false
	}
	b, ok := right.Number()
	if !ok {
		return false
	}
	return cmp(a, b)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
