package schema

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/esclient-go/esclient/pkg/clienterr"
)

// violation is the internal failure record; Validate turns it into a
// FailedValidation once the bad value has been looked up.
type violation struct {
	path path
	msg  string
}

func (v *violation) Error() string { return v.msg + " @ " + v.path.String() }

func fail(p path, format string, args ...any) error {
	return &violation{path: p, msg: fmt.Sprintf(format, args...)}
}

// Validate checks raw against s and returns the coerced, defaulted
// document. raw is never modified.
func Validate(s *Schema, raw map[string]any, testWhat, location string) (map[string]any, error) {
	out, err := s.validateBlock(s.fields, raw, nil)
	if err == nil {
		return out, nil
	}

	var v *violation
	if !errors.As(err, &v) {
		return nil, err
	}
	expr := v.path.String()
	return nil, &clienterr.FailedValidation{
		TestWhat: testWhat,
		Location: location,
		Path:     expr,
		BadValue: ExtractBadValue(raw, expr),
		Message:  v.msg,
	}
}

func (s *Schema) validateBlock(fields []Field, in any, p path) (map[string]any, error) {
	m, ok := in.(map[string]any)
	if !ok {
		return nil, fail(p, "expected a dictionary")
	}

	for _, k := range slices.Sorted(maps.Keys(m)) {
		if !slices.ContainsFunc(fields, func(f Field) bool { return f.Name == k }) {
			return nil, fail(p.key(k), "extra keys not allowed")
		}
	}

	out := make(map[string]any, len(fields))
	for _, f := range fields {
		fp := p.key(f.Name)
		v, present := m[f.Name]
		if !present || v == nil {
			if f.Required && !present {
				return nil, fail(fp, "required key not provided")
			}
			if !f.HasDefault {
				continue
			}
			if f.Kind == Block && f.Default != nil {
				nested, err := s.validateBlock(f.Fields, cloneValue(f.Default), fp)
				if err != nil {
					return nil, err
				}
				out[f.Name] = nested
				continue
			}
			out[f.Name] = cloneValue(f.Default)
			continue
		}

		cv, err := s.validateValue(f, v, fp)
		if err != nil {
			return nil, err
		}
		out[f.Name] = cv
	}
	return out, nil
}

func (s *Schema) validateValue(f Field, v any, p path) (any, error) {
	switch f.Kind {
	case Block:
		return s.validateBlock(f.Fields, v, p)

	case StringList, IntList:
		items, ok := asList(v)
		if !ok {
			if str, isStr := v.(string); isStr && f.Kind == StringList {
				items = []any{str}
			} else {
				return nil, fail(p, "expected %s", f.Kind)
			}
		}
		elem := String
		if f.Kind == IntList {
			elem = Int
		}
		out := make([]any, 0, len(items))
		for i, item := range items {
			cv, err := coerceScalar(elem, item)
			if err != nil {
				return nil, fail(p.index(i), "%v", err)
			}
			if err := s.checkRule(f.Rule, cv); err != nil {
				return nil, fail(p.index(i), "%v", err)
			}
			out = append(out, cv)
		}
		return out, nil

	case Pair:
		items, ok := asList(v)
		if !ok || len(items) != 2 {
			return nil, fail(p, "expected a list of exactly two strings")
		}
		out := make([]any, 2)
		for i, item := range items {
			str, isStr := item.(string)
			if !isStr {
				return nil, fail(p.index(i), "expected str")
			}
			out[i] = str
		}
		return out, nil

	case StringMap:
		m, ok := v.(map[string]any)
		if !ok {
			if sm, isSM := v.(map[string]string); isSM {
				m = make(map[string]any, len(sm))
				for k, val := range sm {
					m[k] = val
				}
			} else {
				return nil, fail(p, "expected %s", f.Kind)
			}
		}
		out := make(map[string]any, len(m))
		for k, val := range m {
			str, isStr := val.(string)
			if !isStr {
				return nil, fail(p.key(k), "expected str")
			}
			out[k] = str
		}
		return out, nil
	}

	cv, err := coerceScalar(f.Kind, v)
	if err != nil {
		return nil, fail(p, "%v", err)
	}
	if err := s.checkRule(f.Rule, cv); err != nil {
		return nil, fail(p, "%v", err)
	}
	return cv, nil
}

func (s *Schema) checkRule(rule string, v any) error {
	if rule == "" {
		return nil
	}
	err := s.validate.Var(v, rule)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "min", "gte":
		return fmt.Errorf("value must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Errorf("value must be at most %s", fe.Param())
	case "oneof":
		return fmt.Errorf("value must be one of [%s]", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "loglevel":
		return fmt.Errorf("not a valid log level")
	default:
		return fmt.Errorf("failed on the '%s' constraint", fe.Tag())
	}
}

func coerceScalar(kind Kind, v any) (any, error) {
	switch kind {
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, errors.New("expected str")

	case Scalar:
		switch x := v.(type) {
		case string:
			return x, nil
		case bool:
			return nil, errors.New("expected str or number")
		}
		if n, ok := toFloat(v); ok {
			return strconv.FormatFloat(n, 'f', -1, 64), nil
		}
		return nil, errors.New("expected str or number")

	case Bool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(x)) {
			case "1", "true", "yes", "on", "enable":
				return true, nil
			case "0", "false", "no", "off", "disable":
				return false, nil
			}
		case int:
			if x == 0 || x == 1 {
				return x == 1, nil
			}
		}
		return nil, errors.New("expected boolean")

	case Int:
		if s, ok := v.(string); ok {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, errors.New("expected int")
			}
			return n, nil
		}
		if _, ok := v.(bool); ok {
			return nil, errors.New("expected int")
		}
		f, ok := toFloat(v)
		if !ok || f != math.Trunc(f) || f < float64(math.MinInt) || f >= float64(math.MaxInt) {
			return nil, errors.New("expected int")
		}
		return int(f), nil

	case Float:
		if s, ok := v.(string); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, errors.New("expected float")
			}
			return f, nil
		}
		if _, ok := v.(bool); ok {
			return nil, errors.New("expected float")
		}
		f, ok := toFloat(v)
		if !ok {
			return nil, errors.New("expected float")
		}
		return f, nil
	}
	return nil, fmt.Errorf("unsupported kind %s", kind)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func asList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(x))
		for i, n := range x {
			out[i] = n
		}
		return out, true
	}
	return nil, false
}

// cloneValue deep-copies the map and list shapes produced by YAML decoding.
func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = cloneValue(val)
		}
		return out
	case []string:
		return slices.Clone(x)
	default:
		return v
	}
}
