/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package jsonc

import (
	"bytes"
	"fmt"

	"github.com/francoispqt/gojay"
)

// Kind is the JSON type of a Value.
type Kind int

const (
	// Null is the JSON null literal, and also the zero Value.
	Null Kind = iota
	Bool
	String
	Number
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "boolean"
	case String:
		return "string"
	case Number:
		return "number"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "null"
	}
}

// Value is a decoded JSON value that remembers object key order.
type Value struct {
	Kind    Kind
	Str     string
	Bool    bool
	Items   []Value
	Members []Member
}

// Member is one key of an object, in document order.
type Member struct {
	Key   string
	Value Value
}

// Get returns the member named key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Decode parses a single JSON value. Input must already be valid JSON (see
// Clean); object members keep their declaration order, and a repeated key
// keeps its first position but its last value.
func Decode(raw []byte) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}, nil
	}
	switch raw[0] {
	case 'n':
		return Value{}, nil
	case 't', 'f':
		var b bool
		if err := gojay.Unmarshal(raw, &b); err != nil {
			return Value{}, err
		}
		return Value{Kind: Bool, Bool: b}, nil
	case '"':
		var s string
		if err := gojay.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		return Value{Kind: String, Str: s}, nil
	case '[':
		arr := &arrayDecoder{}
		if err := gojay.UnmarshalJSONArray(raw, arr); err != nil {
			return Value{}, err
		}
		return Value{Kind: Array, Items: arr.items}, nil
	case '{':
		obj := &objectDecoder{index: map[string]int{}}
		if err := gojay.UnmarshalJSONObject(raw, obj); err != nil {
			return Value{}, err
		}
		return Value{Kind: Object, Members: obj.members}, nil
	default:
		if raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9') {
			return Value{Kind: Number, Str: string(raw)}, nil
		}
		return Value{}, fmt.Errorf("unexpected character %q", raw[0])
	}
}

type objectDecoder struct {
	members []Member
	index   map[string]int
}

func (d *objectDecoder) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	var raw gojay.EmbeddedJSON
	if err := dec.EmbeddedJSON(&raw); err != nil {
		return err
	}
	v, err := Decode(raw)
	if err != nil {
		return err
	}
	if i, ok := d.index[key]; ok {
		d.members[i].Value = v
		return nil
	}
	d.index[key] = len(d.members)
	d.members = append(d.members, Member{Key: key, Value: v})
	return nil
}

func (d *objectDecoder) NKeys() int {
	return 0
}

type arrayDecoder struct {
	items []Value
}

func (d *arrayDecoder) UnmarshalJSONArray(dec *gojay.Decoder) error {
	var raw gojay.EmbeddedJSON
	if err := dec.EmbeddedJSON(&raw); err != nil {
		return err
	}
	v, err := Decode(raw)
	if err != nil {
		return err
	}
	d.items = append(d.items, v)
	return nil
}
