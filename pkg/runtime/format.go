package runtime

import (
	"strconv"
	"strings"
)

// Format renders a value the way print writes it: strings and chars appear
// without quotes.
func Format(v Value) string {
	switch val := v.(type) {
	case StringValue:
		return val.Val
	case CharValue:
		return string(val.Val)
	default:
		return Inspect(v)
	}
}

// Inspect renders a value unambiguously, quoting strings and chars.
func Inspect(v Value) string {
	switch val := v.(type) {
	case nil, NullValue:
		return "null"
	case BoolValue:
		return strconv.FormatBool(val.Val)
	case IntegerValue:
		return strconv.FormatInt(val.Val, 10)
	case StringValue:
		return strconv.Quote(val.Val)
	case CharValue:
		return strconv.QuoteRune(val.Val)
	case *ArrayValue:
		parts := make([]string, len(val.Elements))
		for i, el := range val.Elements {
			parts[i] = Inspect(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *RecordValue:
		if len(val.Fields) == 0 {
			return "{}"
		}
		parts := make([]string, len(val.Fields))
		for i, f := range val.Fields {
			parts[i] = f.Key + ": " + Inspect(f.Value)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case *FunctionValue:
		return "<func " + val.Name + ">"
	case *NativeFunctionValue:
		return "<native " + val.Name + ">"
	default:
		return "<" + v.Kind().String() + ">"
	}
}
