// Package vars builds the flattened, case-insensitive variable namespace a
// single evaluation resolves names against.
package vars

import (
	"reflect"
	"sort"
	"strings"
)

type entry struct {
	name  string // original spelling
	value any
}

// Context is the flattened name->value namespace for one evaluation. Lookup
// is case-insensitive; the original spelling of each name is preserved for
// diagnostics. A Context is built once per evaluation and never mutated
// afterwards, so it is safe for concurrent reads.
type Context struct {
	entries map[string]entry // key: lowercased name
	raw     any              // the caller's local data object, unflattened
}

// New builds a Context by flattening global then local data; on a
// case-insensitive name collision the local binding wins. Either argument
// may be nil. Data may be a map with string-convertible keys or a struct
// (pointer or value) whose exported fields become bindings.
func New(global, local any) *Context {
	c := &Context{entries: make(map[string]entry), raw: local}
	flatten(global, c.entries)
	flatten(local, c.entries)
	return c
}

// Lookup returns the value bound to name, matching case-insensitively.
func (c *Context) Lookup(name string) (any, bool) {
	e, ok := c.entries[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Names returns the original spellings of every bound name, sorted.
func (c *Context) Names() []string {
	names := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// Raw returns the unflattened local data object, for handing to a
// host-supplied resolver callback.
func (c *Context) Raw() any {
	return c.raw
}

// With returns a copy of the context with one additional binding layered on
// top. The receiver is not modified.
func (c *Context) With(name string, value any) *Context {
	next := &Context{entries: make(map[string]entry, len(c.entries)+1), raw: c.raw}
	for k, e := range c.entries {
		next.entries[k] = e
	}
	next.entries[strings.ToLower(name)] = entry{name: name, value: value}
	return next
}

// Each calls fn with every binding's original name and value.
func (c *Context) Each(fn func(name string, value any)) {
	for _, e := range c.entries {
		fn(e.name, e.value)
	}
}

func flatten(data any, into map[string]entry) {
	if data == nil {
		return
	}

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		for _, key := range v.MapKeys() {
			k := key
			for k.Kind() == reflect.Interface {
				k = k.Elem()
			}
			if k.Kind() != reflect.String {
				continue
			}
			name := k.String()
			into[strings.ToLower(name)] = entry{name: name, value: v.MapIndex(key).Interface()}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			into[strings.ToLower(f.Name)] = entry{name: f.Name, value: v.Field(i).Interface()}
		}
	}
}
