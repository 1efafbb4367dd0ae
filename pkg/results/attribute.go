// SPDX-License-Identifier: Apache-2.0

package results

import "time"

// Kind selects the key/value table an attribute is stored in.
type Kind int

const (
	KindBigInt Kind = iota
	KindDate
	KindString
)

func (k Kind) table() string {
	switch k {
	case KindDate:
		return "KeyValueTableDate"
	case KindString:
		return "KeyValueTableString"
	default:
		return "KeyValueTableBigInt"
	}
}

// Attribute is a named value attached to a result.
type Attribute struct {
	Kind  Kind
	Name  string
	Value any
}

func Int(name string, v int64) Attribute {
	return Attribute{Kind: KindBigInt, Name: name, Value: v}
}

// Flag stores a boolean as 0 or 1.
func Flag(name string, v bool) Attribute {
	if v {
		return Int(name, 1)
	}
	return Int(name, 0)
}

func Date(name string, v time.Time) Attribute {
	return Attribute{Kind: KindDate, Name: name, Value: v}
}

func String(name, v string) Attribute {
	return Attribute{Kind: KindString, Name: name, Value: v}
}
