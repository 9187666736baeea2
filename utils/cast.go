package utils

import (
	"reflect"

	"github.com/juju/errors"
)

// CastToSlice accepts any slice or array, as decoded from toml or yaml.
func CastToSlice(arg interface{}) (out []interface{}, ok bool) {
	if arg == nil {
		return nil, false
	}
	slice := reflect.ValueOf(arg)
	if slice.Kind() != reflect.Slice && slice.Kind() != reflect.Array {
		return nil, false
	}
	out = make([]interface{}, slice.Len())
	for i := 0; i < slice.Len(); i++ {
		out[i] = slice.Index(i).Interface()
	}
	return out, true
}

func CastSliceInterfaceToSliceString(a []interface{}) ([]string, error) {
	aStrings := make([]string, len(a))
	for i, c := range a {
		name, ok := c.(string)
		if !ok {
			return nil, errors.NotValidf("element %d (%v) of type %T", i, c, c)
		}
		aStrings[i] = name
	}
	return aStrings, nil
}

// CastToString returns "" for a missing key.
func CastToString(arg interface{}) (string, bool) {
	if arg == nil {
		return "", true
	}
	s, ok := arg.(string)
	return s, ok
}
