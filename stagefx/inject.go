package stagefx

import (
	"reflect"
	"strconv"

	"go.uber.org/dig"
)

// IsIn tests if the given value refers to a struct that embeds fx.In,
// either directly or through a pointer.  It returns the struct type
// that was inspected together with the result of the test.
//
// This is useful when building components dynamically, to decide
// whether a value carries injected dependencies.
func IsIn(v any) (reflect.Type, bool) {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}

	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct && dig.IsIn(t) {
		return t, true
	}

	return t, false
}

// IsInjected tests if a given struct field was populated by an fx app.
// Required dependencies are always injected when the app starts, so
// this reports false only for optional dependencies left at their zero
// value.
//
// Note that this can give false negatives for non-pointer optional
// components that are present but happen to be zero.
func IsInjected(f reflect.StructField, fv reflect.Value) bool {
	optional, _ := strconv.ParseBool(f.Tag.Get("optional"))
	return !optional || !fv.IsZero()
}
