package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind is the value type a field accepts.
type Kind int

const (
	// String accepts a string.
	String Kind = iota
	// Scalar accepts a string or a number and normalizes it to a string.
	Scalar
	// Bool accepts a bool or a boolean-like string.
	Bool
	// Int accepts an integral number or a numeric string.
	Int
	// Float accepts any number or a numeric string.
	Float
	// StringList accepts a list of strings. A bare string becomes a
	// one-element list.
	StringList
	// IntList accepts a list of integers.
	IntList
	// StringMap accepts a map of string to string.
	StringMap
	// Pair accepts a list of exactly two strings.
	Pair
	// Block accepts a nested map validated against the field's own table.
	Block
)

func (k Kind) String() string {
	switch k {
	case String:
		return "str"
	case Scalar:
		return "scalar"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case StringList:
		return "list of str"
	case IntList:
		return "list of int"
	case StringMap:
		return "map of str"
	case Pair:
		return "pair"
	case Block:
		return "dictionary"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Field describes one accepted key.
type Field struct {
	Name string
	Kind Kind
	// Default is filled in when the key is absent or null. It is only used
	// when HasDefault is set; a nil Default with HasDefault set means the
	// key is optional and defaults to null.
	Default    any
	HasDefault bool
	Required   bool
	// Rule is a validator tag checked after coercion. For list kinds it is
	// checked per element.
	Rule string
	// Fields is the nested table of a Block field.
	Fields []Field
}

// Optional returns a field that defaults to null.
func Optional(name string, kind Kind) Field {
	return Field{Name: name, Kind: kind, HasDefault: true}
}

// WithDefault returns a field with a fixed default.
func WithDefault(name string, kind Kind, def any) Field {
	return Field{Name: name, Kind: kind, Default: def, HasDefault: true}
}

// Required returns a field that must be present.
func Required(name string, kind Kind) Field {
	return Field{Name: name, Kind: kind, Required: true}
}

// Nested returns a Block field that defaults to an empty map, which is then
// filled from fields.
func Nested(name string, fields ...Field) Field {
	return Field{Name: name, Kind: Block, Default: map[string]any{}, HasDefault: true, Fields: fields}
}

// Constrain returns a copy of f with rule attached.
func (f Field) Constrain(rule string) Field {
	f.Rule = rule
	return f
}

// Schema is an immutable field table.
type Schema struct {
	name     string
	fields   []Field
	validate *validator.Validate
}

// New builds a schema from a field table. It panics on duplicate names or
// an unparsable rule, both of which are programming errors.
func New(name string, fields ...Field) *Schema {
	v := validator.New()
	if err := v.RegisterValidation("loglevel", isLogLevel); err != nil {
		panic(fmt.Sprintf("schema: register loglevel: %v", err))
	}

	s := &Schema{name: name, fields: slices.Clone(fields), validate: v}
	checkTable(name, s.fields)
	return s
}

func checkTable(where string, fields []Field) {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			panic(fmt.Sprintf("schema %s: duplicate field %q", where, f.Name))
		}
		seen[f.Name] = true
		if f.Kind == Block {
			checkTable(where+"."+f.Name, f.Fields)
		}
	}
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns a copy of the top-level field table.
func (s *Schema) Fields() []Field { return slices.Clone(s.fields) }

// Lookup finds a field by dotted name, e.g. "client.port".
func (s *Schema) Lookup(dotted string) (Field, bool) {
	fields := s.fields
	parts := strings.Split(dotted, ".")
	for i, part := range parts {
		idx := slices.IndexFunc(fields, func(f Field) bool { return f.Name == part })
		if idx < 0 {
			return Field{}, false
		}
		if i == len(parts)-1 {
			return fields[idx], true
		}
		fields = fields[idx].Fields
	}
	return Field{}, false
}

var logLevelNames = []string{"NOTSET", "DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

func isLogLevel(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if slices.Contains(logLevelNames, strings.ToUpper(s)) {
		return true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return false
	}
	return n >= 0 && n <= 50 && n%10 == 0
}
