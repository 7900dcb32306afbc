package kstat

import "strconv"

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindUint64
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindUint64:
		return "uint64"
	default:
		return "invalid"
	}
}

// Value is a raw counter value as exported by the kernel: either a string or an
// unsigned 64-bit integer. The zero Value is KindInvalid.
type Value struct {
	kind Kind
	str  string
	num  uint64
}

func String(s string) Value { return Value{kind: KindString, str: s} }

func Uint64(n uint64) Value { return Value{kind: KindUint64, num: n} }

func (v Value) Kind() Kind { return v.kind }

// Str returns the string payload and whether v holds one.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Num returns the integer payload and whether v holds one.
func (v Value) Num() (uint64, bool) {
	return v.num, v.kind == KindUint64
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindUint64:
		return strconv.FormatUint(v.num, 10)
	default:
		return "<invalid>"
	}
}

// parseValue types a textual value. dataset_name is always a string, even when
// the dataset happens to have a numeric name.
func parseValue(field, raw string) Value {
	if field == "dataset_name" {
		return String(raw)
	}
	if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
		return Uint64(n)
	}
	return String(raw)
}
