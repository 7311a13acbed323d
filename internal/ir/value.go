package ir

import (
	"fmt"
	"strings"
)

// ValueKind enumerates runtime value kinds understood by the evaluator.
type ValueKind uint8

const (
	ValInt ValueKind = iota
	ValBool
	ValString
	ValTag
	ValTuple
	ValRecord
)

// Value is one runtime value. Tag values carry their payload in Elems;
// records additionally carry field names parallel to Elems.
type Value struct {
	Kind ValueKind

	Int   int64
	Bool  bool
	Str   string
	Tag   string
	Elems []Value
	Names []string
}

func IntValue(v int64) Value    { return Value{Kind: ValInt, Int: v} }
func BoolValue(v bool) Value    { return Value{Kind: ValBool, Bool: v} }
func StringValue(s string) Value { return Value{Kind: ValString, Str: s} }

// TagValue builds a tagged value.
func TagValue(tag string, elems ...Value) Value {
	return Value{Kind: ValTag, Tag: tag, Elems: elems}
}

// TupleValue builds a tuple value.
func TupleValue(elems ...Value) Value {
	return Value{Kind: ValTuple, Elems: elems}
}

// RecordValue builds a record value; names and elems must be parallel.
func RecordValue(names []string, elems []Value) Value {
	return Value{Kind: ValRecord, Names: names, Elems: elems}
}

// FieldByName looks up a record field.
func (v Value) FieldByName(name string) (Value, bool) {
	for i, n := range v.Names {
		if n == name {
			return v.Elems[i], true
		}
	}
	return Value{}, false
}

// Equal reports structural value equality.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValInt:
		return v.Int == other.Int
	case ValBool:
		return v.Bool == other.Bool
	case ValString:
		return v.Str == other.Str
	case ValTag:
		if v.Tag != other.Tag || len(v.Elems) != len(other.Elems) {
			return false
		}
	case ValTuple:
		if len(v.Elems) != len(other.Elems) {
			return false
		}
	case ValRecord:
		if len(v.Elems) != len(other.Elems) {
			return false
		}
		for i := range v.Names {
			if v.Names[i] != other.Names[i] {
				return false
			}
		}
	}
	for i := range v.Elems {
		if !v.Elems[i].Equal(other.Elems[i]) {
			return false
		}
	}
	return true
}

func (v Value) String() string {
	switch v.Kind {
	case ValInt:
		return fmt.Sprintf("%d", v.Int)
	case ValBool:
		return fmt.Sprintf("%t", v.Bool)
	case ValString:
		return fmt.Sprintf("%q", v.Str)
	case ValTag:
		if len(v.Elems) == 0 {
			return v.Tag
		}
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		return v.Tag + "(" + strings.Join(parts, ", ") + ")"
	case ValTuple:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case ValRecord:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = v.Names[i] + ": " + e.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "?"
	}
}

// ConstValue converts a constant to its runtime value.
func ConstValue(c ConstVal) Value {
	switch c.Kind {
	case ConstInt:
		return IntValue(c.Int)
	case ConstBool:
		return BoolValue(c.Bool)
	default:
		return StringValue(c.Str)
	}
}
