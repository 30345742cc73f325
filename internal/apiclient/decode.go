package apiclient

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

var unmarshalerType = reflect.TypeFor[json.Unmarshaler]()

// decodeLenient fills out from raw one field and one element at a time. A
// value that does not decode stays at its zero value and its siblings still
// decode. It is the fallback for replies json.Unmarshal rejects.
func decodeLenient(raw []byte, out any) {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return
	}
	rv.Elem().SetZero()
	fill(raw, rv.Elem())
}

// fill decodes raw into the addressable v and reports whether it succeeded.
func fill(raw []byte, v reflect.Value) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}

	if v.Kind() != reflect.Pointer && v.Addr().Type().Implements(unmarshalerType) {
		return unmarshalOrZero(raw, v)
	}

	switch v.Kind() {
	case reflect.Pointer:
		p := reflect.New(v.Type().Elem())
		if !fill(raw, p.Elem()) {
			return false
		}
		v.Set(p)
		return true

	case reflect.Struct:
		var fields map[string]json.RawMessage
		if json.Unmarshal(raw, &fields) != nil {
			return false
		}
		fillStruct(fields, v)
		return true

	case reflect.Slice:
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) != nil {
			return false
		}
		out := reflect.MakeSlice(v.Type(), len(items), len(items))
		for i, item := range items {
			fill(item, out.Index(i))
		}
		v.Set(out)
		return true

	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return unmarshalOrZero(raw, v)
		}
		var entries map[string]json.RawMessage
		if json.Unmarshal(raw, &entries) != nil {
			return false
		}
		out := reflect.MakeMapWithSize(v.Type(), len(entries))
		for k, item := range entries {
			elem := reflect.New(v.Type().Elem()).Elem()
			fill(item, elem)
			out.SetMapIndex(reflect.ValueOf(k).Convert(v.Type().Key()), elem)
		}
		v.Set(out)
		return true

	default:
		return unmarshalOrZero(raw, v)
	}
}

func unmarshalOrZero(raw []byte, v reflect.Value) bool {
	if err := json.Unmarshal(raw, v.Addr().Interface()); err != nil {
		v.SetZero()
		return false
	}
	return true
}

func fillStruct(fields map[string]json.RawMessage, v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			fillStruct(fields, v.Field(i))
			continue
		}
		if name == "" {
			name = f.Name
		}
		if raw, ok := lookupField(fields, name); ok {
			fill(raw, v.Field(i))
		}
	}
}

// lookupField matches keys the way encoding/json does: exact first, then
// case-insensitively.
func lookupField(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if raw, ok := fields[name]; ok {
		return raw, true
	}
	for k, raw := range fields {
		if strings.EqualFold(k, name) {
			return raw, true
		}
	}
	return nil, false
}
