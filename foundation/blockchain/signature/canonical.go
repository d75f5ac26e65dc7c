// Package signature provides the hashing and signing support the blockchain
// needs to identify blocks and transactions and to prove ownership of outputs.
package signature

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Hash returns the hex encoded SHA-256 of the value. A string is hashed as
// its raw bytes, anything else is hashed over its canonical serialization.
func Hash(value any) string {
	return hex.EncodeToString(HashBytes(value))
}

// HashBytes returns the 32 byte SHA-256 digest of the value.
func HashBytes(value any) []byte {
	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	default:
		data = Canonical(value)
	}

	sum := sha256.Sum256(data)
	return sum[:]
}

// Canonical produces the serialization used for hashing. Struct fields are
// written in lexical order of their wire name and empty values are dropped,
// so two values carrying the same content always produce the same bytes no
// matter how their types declare the fields. Unsupported kinds panic.
func Canonical(value any) []byte {
	var buf bytes.Buffer
	encode(&buf, reflect.ValueOf(value))
	return buf.Bytes()
}

// =============================================================================

// field describes a struct field participating in the canonical form.
type field struct {
	name  string
	index int
}

// fieldCache holds the sorted field list for each struct type seen.
var fieldCache sync.Map

// fieldsFor returns the fields of the struct type ordered by wire name.
func fieldsFor(t reflect.Type) []field {
	if f, ok := fieldCache.Load(t); ok {
		return f.([]field)
	}

	fields := make([]field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			switch tagName {
			case "-":
				continue
			case "":
			default:
				name = tagName
			}
		}

		fields = append(fields, field{name: name, index: i})
	}

	sort.Slice(fields, func(i, j int) bool {
		return fields[i].name < fields[j].name
	})

	f, _ := fieldCache.LoadOrStore(t, fields)
	return f.([]field)
}

// isEmpty reports whether the value is left out of the canonical form.
func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Pointer, reflect.Interface:
		return v.IsNil() || isEmpty(v.Elem())
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Struct:
		for _, f := range fieldsFor(v.Type()) {
			if !isEmpty(v.Field(f.index)) {
				return false
			}
		}
		return true
	}

	return false
}

// encode writes the canonical form of the value into the buffer.
func encode(buf *bytes.Buffer, v reflect.Value) {
	switch v.Kind() {
	case reflect.Invalid:
		buf.WriteString("null")

	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			buf.WriteString("null")
			return
		}
		encode(buf, v.Elem())

	case reflect.Struct:
		buf.WriteByte('{')
		first := true
		for _, f := range fieldsFor(v.Type()) {
			fv := v.Field(f.index)
			if isEmpty(fv) {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			writeString(buf, f.name)
			buf.WriteByte(':')
			encode(buf, fv)
		}
		buf.WriteByte('}')

	case reflect.Map:
		keys := make([]string, 0, v.Len())
		values := make(map[string]reflect.Value, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			if isEmpty(iter.Value()) {
				continue
			}
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			values[k] = iter.Value()
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, k)
			buf.WriteByte(':')
			encode(buf, values[k])
		}
		buf.WriteByte('}')

	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			writeString(buf, hex.EncodeToString(b))
			return
		}

		buf.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			encode(buf, v.Index(i))
		}
		buf.WriteByte(']')

	case reflect.String:
		writeString(buf, v.String())

	case reflect.Bool:
		buf.WriteString(strconv.FormatBool(v.Bool()))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		buf.WriteString(strconv.FormatInt(v.Int(), 10))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		buf.WriteString(strconv.FormatUint(v.Uint(), 10))

	case reflect.Float32, reflect.Float64:
		buf.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 64))

	default:
		panic(fmt.Sprintf("signature: unsupported kind %s for canonical hashing", v.Kind()))
	}
}

// writeString writes a JSON quoted string.
func writeString(buf *bytes.Buffer, s string) {
	data, _ := json.Marshal(s)
	buf.Write(data)
}
