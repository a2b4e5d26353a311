// Package access performs single-step member and index resolution against
// arbitrary runtime values. It prefers the capability interfaces below and
// falls back to reflection. Out-of-range and absent lookups report
// not-found; they never panic and never error.
package access

import (
	"reflect"
	"strconv"
	"strings"
)

// MemberAccessor lets a type serve property lookups without reflection.
type MemberAccessor interface {
	GetMember(name string) (any, bool)
}

// IndexAccessor lets a type serve index/key lookups without reflection.
type IndexAccessor interface {
	GetIndex(key string) (any, bool)
}

// Member resolves a single property step against obj. Struct fields and
// map keys match exactly first, then case-insensitively, mirroring the
// variable context's case rule for chained paths.
func Member(obj any, name string) (any, bool) {
	if obj == nil {
		return nil, false
	}
	if ma, ok := obj.(MemberAccessor); ok {
		return ma.GetMember(name)
	}

	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		if f, ok := t.FieldByName(name); ok && f.IsExported() {
			return v.FieldByName(name).Interface(), true
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.IsExported() && strings.EqualFold(f.Name, name) {
				return v.Field(i).Interface(), true
			}
		}
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		if mv := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key())); mv.IsValid() {
			return mv.Interface(), true
		}
		for _, key := range v.MapKeys() {
			if strings.EqualFold(key.String(), name) {
				return v.MapIndex(key).Interface(), true
			}
		}
	}
	return nil, false
}

// Index resolves a single index step against a collection. The key may be a
// decimal index, a from-end index `^n`, or a map key (bare or quoted with
// single or double quotes). String keys match exactly; case-insensitivity
// belongs to the variable context, not to this layer.
func Index(collection any, key string) (any, bool) {
	if collection == nil {
		return nil, false
	}
	key = strings.TrimSpace(key)

	if ia, ok := collection.(IndexAccessor); ok {
		return ia.GetIndex(unquote(key))
	}

	v := reflect.ValueOf(collection)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		idx, ok := parseIndex(key, v.Len())
		if !ok || idx < 0 || idx >= v.Len() {
			return nil, false
		}
		return v.Index(idx).Interface(), true
	case reflect.String:
		// Index over runes, not bytes; a byte index would split multi-byte
		// UTF-8 text.
		runes := []rune(v.String())
		idx, ok := parseIndex(key, len(runes))
		if !ok || idx < 0 || idx >= len(runes) {
			return nil, false
		}
		return string(runes[idx]), true
	case reflect.Map:
		name := unquote(key)
		if v.Type().Key().Kind() == reflect.String {
			if mv := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key())); mv.IsValid() {
				return mv.Interface(), true
			}
			return nil, false
		}
		if idx, err := strconv.Atoi(name); err == nil && v.Type().Key().Kind() >= reflect.Int && v.Type().Key().Kind() <= reflect.Int64 {
			if mv := v.MapIndex(reflect.ValueOf(idx).Convert(v.Type().Key())); mv.IsValid() {
				return mv.Interface(), true
			}
		}
		return nil, false
	}

	return methodIndex(collection, unquote(key))
}

// methodIndex discovers lookup methods on arbitrary indexer-bearing types:
// first the try-get shape `Get(string) (any, bool)`, then a plain
// single-string indexer `Index(string) any`.
func methodIndex(obj any, key string) (any, bool) {
	v := reflect.ValueOf(obj)

	if m := v.MethodByName("Get"); m.IsValid() {
		mt := m.Type()
		if mt.NumIn() == 1 && mt.In(0).Kind() == reflect.String && mt.NumOut() == 2 && mt.Out(1).Kind() == reflect.Bool {
			out := m.Call([]reflect.Value{reflect.ValueOf(key).Convert(mt.In(0))})
			if !out[1].Bool() {
				return nil, false
			}
			return out[0].Interface(), true
		}
	}
	if m := v.MethodByName("Index"); m.IsValid() {
		mt := m.Type()
		if mt.NumIn() == 1 && mt.In(0).Kind() == reflect.String && mt.NumOut() == 1 {
			out := m.Call([]reflect.Value{reflect.ValueOf(key).Convert(mt.In(0))})
			return out[0].Interface(), true
		}
	}
	return nil, false
}

// parseIndex parses a forward index or a `^n` from-end index against the
// given collection length.
func parseIndex(key string, length int) (int, bool) {
	if strings.HasPrefix(key, "^") {
		n, err := strconv.Atoi(key[1:])
		if err != nil {
			return 0, false
		}
		return length - n, true
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return n, true
}

func unquote(key string) string {
	if len(key) >= 2 {
		if (key[0] == '"' && key[len(key)-1] == '"') || (key[0] == '\'' && key[len(key)-1] == '\'') {
			return key[1 : len(key)-1]
		}
	}
	return key
}
