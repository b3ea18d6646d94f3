package schema

import "strings"

// Primitive identifies a scalar type tag.
type Primitive int

const (
	StringType Primitive = iota + 1
	IntegerType
	NumberType
	DecimalType
	BooleanType
	DateType
	DateTimeType
	TimeType
	UUIDType
)

var primitiveNames = map[Primitive]string{
	StringType:   "string",
	IntegerType:  "integer",
	NumberType:   "number",
	DecimalType:  "decimal",
	BooleanType:  "boolean",
	DateType:     "date",
	DateTimeType: "datetime",
	TimeType:     "time",
	UUIDType:     "uuid",
}

func (p Primitive) String() string {
	if n, ok := primitiveNames[p]; ok {
		return n
	}
	return "unknown"
}

// ParsePrimitive maps a type name ("string", "integer", ...) to its tag.
// "bool", "int" and "float" are accepted as aliases.
func ParsePrimitive(name string) (Primitive, bool) {
	switch strings.ToLower(name) {
	case "bool":
		return BooleanType, true
	case "int":
		return IntegerType, true
	case "float":
		return NumberType, true
	}
	for p, n := range primitiveNames {
		if n == strings.ToLower(name) {
			return p, true
		}
	}
	return 0, false
}

// Numeric reports whether bounds on p compare values rather than lengths.
func (p Primitive) Numeric() bool {
	return p == IntegerType || p == NumberType || p == DecimalType
}
