package repository

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Document is one persisted record in its JSON shape.
type Document map[string]any

func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Clone returns a shallow copy; document values are JSON scalars so this is enough.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

type Operator int

const (
	OpEq Operator = iota
	OpNe
	OpIn
)

// Condition compares one document field. A nil value stands for null or a missing field.
type Condition struct {
	Field    string
	Operator Operator
	Values   []any
}

func Eq(field string, value any) Condition {
	return Condition{Field: field, Operator: OpEq, Values: []any{normalize(value)}}
}

func Ne(field string, value any) Condition {
	return Condition{Field: field, Operator: OpNe, Values: []any{normalize(value)}}
}

func In(field string, values ...any) Condition {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = normalize(v)
	}
	return Condition{Field: field, Operator: OpIn, Values: vs}
}

// Selector is a conjunction of conditions. The empty selector matches everything.
type Selector []Condition

type SortField struct {
	Field string
	Desc  bool
}

var fieldName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// normalize turns typed values (Timestamp, SyncStatus, ints) into the
// scalar they decode to from a stored document.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

func equal(a, b any) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

// Matches evaluates the selector in memory with the same null semantics as the SQL form.
func (s Selector) Matches(doc Document) bool {
	if doc == nil {
		return false
	}
	for _, c := range s {
		v := doc[c.Field]
		switch c.Operator {
		case OpEq:
			if !equal(v, c.Values[0]) {
				return false
			}
		case OpNe:
			if equal(v, c.Values[0]) {
				return false
			}
		case OpIn:
			found := false
			for _, want := range c.Values {
				if equal(v, want) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func jsonPath(field string) string {
	return "json_extract(doc, '$." + field + "')"
}

// sqlArg converts a value into what json_extract yields for it. JSON booleans come back as 1/0.
func sqlArg(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}

func (s Selector) where() (string, []any, error) {
	if len(s) == 0 {
		return "1", nil, nil
	}
	var (
		clauses []string
		args    []any
	)
	for _, c := range s {
		if !fieldName.MatchString(c.Field) {
			return "", nil, fmt.Errorf("%w: invalid field %q", ErrValidation, c.Field)
		}
		col := jsonPath(c.Field)
		switch c.Operator {
		case OpEq:
			clauses = append(clauses, col+" IS ?")
			args = append(args, sqlArg(c.Values[0]))
		case OpNe:
			clauses = append(clauses, col+" IS NOT ?")
			args = append(args, sqlArg(c.Values[0]))
		case OpIn:
			var (
				parts   []string
				holders []string
			)
			for _, v := range c.Values {
				if v == nil {
					parts = append(parts, col+" IS NULL")
					continue
				}
				holders = append(holders, "?")
				args = append(args, sqlArg(v))
			}
			if len(holders) > 0 {
				parts = append(parts, col+" IN ("+strings.Join(holders, ", ")+")")
			}
			if len(parts) == 0 {
				parts = append(parts, "0")
			}
			clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
		default:
			return "", nil, fmt.Errorf("%w: unknown operator %d", ErrValidation, c.Operator)
		}
	}
	return strings.Join(clauses, " AND "), args, nil
}

func orderBy(sort []SortField) (string, error) {
	parts := make([]string, 0, len(sort)+1)
	for _, f := range sort {
		if !fieldName.MatchString(f.Field) {
			return "", fmt.Errorf("%w: invalid sort field %q", ErrValidation, f.Field)
		}
		dir := "ASC"
		if f.Desc {
			dir = "DESC"
		}
		parts = append(parts, jsonPath(f.Field)+" "+dir)
	}
	parts = append(parts, "id ASC")
	return strings.Join(parts, ", "), nil
}
