package config

import (
	"reflect"
	"strings"
)

// overlay copies every non-nil field of src into dst. Both must be pointers
// to the same struct type. Pointer-to-struct fields are merged recursively;
// everything else is deep-copied.
func overlay(dst, src any) {
	overlayValue(reflect.ValueOf(dst).Elem(), reflect.ValueOf(src).Elem())
}

func overlayValue(dst, src reflect.Value) {
	for i := range src.NumField() {
		sf, df := src.Field(i), dst.Field(i)
		if isNil(sf) {
			continue
		}
		if sf.Kind() == reflect.Pointer && sf.Elem().Kind() == reflect.Struct {
			if df.IsNil() {
				df.Set(reflect.New(sf.Elem().Type()))
			}
			overlayValue(df.Elem(), sf.Elem())
			continue
		}
		df.Set(deepCopy(sf))
	}
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		out := reflect.New(v.Elem().Type())
		out.Elem().Set(deepCopy(v.Elem()))
		return out
	case reflect.Slice:
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(out, v)
		return out
	case reflect.Map:
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out
	}
	return v
}

// toMap renders a settings record as the map shape the schema package
// produces: scalars, []any and map[string]any, with nil fields omitted.
func toMap(rec any) map[string]any {
	return structToMap(reflect.ValueOf(rec).Elem())
}

func structToMap(v reflect.Value) map[string]any {
	out := make(map[string]any)
	t := v.Type()
	for i := range v.NumField() {
		fv := v.Field(i)
		if isNil(fv) {
			continue
		}
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("mapstructure"), ",")
		out[name] = plainValue(fv)
	}
	return out
}

func plainValue(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Pointer:
		if v.Elem().Kind() == reflect.Struct {
			return structToMap(v.Elem())
		}
		return v.Elem().Interface()
	case reflect.Slice:
		out := make([]any, v.Len())
		for i := range v.Len() {
			out[i] = v.Index(i).Interface()
		}
		return out
	case reflect.Map:
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out
	}
	return v.Interface()
}
