package frame

import (
	"math"
	"strconv"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
)

// Value is a single cell: a string, a float64 or null.
// The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
}

func Null() Value { return Value{} }

func Str(s string) Value { return Value{kind: KindString, str: s} }

// Num returns a numeric cell. NaN and ±Inf are stored as null so a frame never
// carries an undefined number.
func Num(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric value; ok is false for strings and nulls.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the raw string of a string cell, "" otherwise.
func (v Value) Text() string {
	if v.kind != KindString {
		return ""
	}
	return v.str
}

// String renders the cell the way it is written to CSV: numbers in the
// shortest exact form, null as "".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}
