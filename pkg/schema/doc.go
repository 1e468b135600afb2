// Package schema validates nested configuration documents against
// declarative field tables.
//
// A Schema is an immutable table of fields. Each field carries a kind, a
// default (or none), and an optional constraint rule expressed as a
// go-playground/validator tag such as "min=1,max=65535". Validation is
// strict: keys not named in the table are rejected.
//
// Validate returns a new document with every value coerced to its canonical
// Go type (string, bool, int, float64, []any, map[string]any) and every
// absent field filled with its default. On failure it returns a
// *clienterr.FailedValidation whose BadValue is read back out of the
// original input by following the failing path:
//
//	s := schema.NewConfigSchema()
//	out, err := schema.Validate(s, raw, "Elasticsearch Configuration", "elasticsearch")
//
// Schemas are built fresh by their constructors and passed in at call time.
// Nothing in this package holds global state.
package schema
