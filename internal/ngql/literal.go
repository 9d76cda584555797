package ngql

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/vanshika/graphbatch/internal/schema"
)

// Null is the literal rendered for absent or nil values.
const Null = "NULL"

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05.000000"
	timeLayout     = "15:04:05.000000"
)

var (
	errNotInteger  = errors.New("not an integer")
	errNotFinite   = errors.New("not a finite number")
	errNotBool     = errors.New("not a boolean")
	errNotTemporal = errors.New("not a time value")

	escaper = strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
)

// Formatter renders identities and property values as nGQL literals.
// It is stateless apart from its flags and safe for concurrent use.
type Formatter struct {
	// RawStrings keeps string contents untouched between the quotes.
	RawStrings bool
}

// Literal renders v as a literal of type t using the default formatter.
func Literal(t schema.DataType, v any) (string, error) {
	return Formatter{}.Value(t, v)
}

// Quote wraps s in double quotes, escaping it unless RawStrings is set.
func (f Formatter) Quote(s string) string {
	if !f.RawStrings {
		s = escaper.Replace(s)
	}
	return `"` + s + `"`
}

// Value renders one property value. A nil value, including a nil pointer,
// renders as NULL.
func (f Formatter) Value(t schema.DataType, v any) (string, error) {
	v = indirect(v)
	if v == nil {
		if !t.Valid() {
			return "", &DataTypeError{Type: t}
		}
		return Null, nil
	}

	switch {
	case t.IsQuoted():
		return f.Quote(toText(v)), nil
	case t.IsInteger():
		n, err := toInt64(v, true)
		if err != nil {
			return "", &ValueError{Type: t, Value: v, Err: err}
		}
		return strconv.FormatInt(n, 10), nil
	}

	switch t {
	case schema.Float, schema.Double:
		x, bits, err := toFloat64(v)
		if err != nil {
			return "", &ValueError{Type: t, Value: v, Err: err}
		}
		return formatFloat(x, bits), nil
	case schema.Bool:
		b, err := toBool(v)
		if err != nil {
			return "", &ValueError{Type: t, Value: v, Err: err}
		}
		return strconv.FormatBool(b), nil
	case schema.Date:
		return f.temporal("date", v, dateLayout, t)
	case schema.DateTime:
		return f.temporal("datetime", v, dateTimeLayout, t)
	case schema.Time:
		return f.temporal("time", v, timeLayout, t)
	case schema.Timestamp:
		if ts, ok := v.(time.Time); ok {
			return strconv.FormatInt(ts.Unix(), 10), nil
		}
		if n, err := toInt64(v, true); err == nil {
			return strconv.FormatInt(n, 10), nil
		}
		if s, ok := v.(string); ok {
			return "timestamp(" + f.Quote(s) + ")", nil
		}
		return "", &ValueError{Type: t, Value: v, Err: errNotTemporal}
	}
	return "", &DataTypeError{Type: t}
}

func (f Formatter) temporal(fn string, v any, layout string, t schema.DataType) (string, error) {
	switch x := v.(type) {
	case time.Time:
		return fn + "(" + f.Quote(x.Format(layout)) + ")", nil
	case string:
		return fn + "(" + f.Quote(x) + ")", nil
	}
	return "", &ValueError{Type: t, Value: v, Err: errNotTemporal}
}

// Values renders the props of one entity in field order as the inside of a
// value list: ` <v1>, <v2>`. Missing fields render as NULL.
func (f Formatter) Values(d *schema.Descriptor, props map[string]any) (string, error) {
	var b strings.Builder
	for i, field := range d.Fields() {
		t, _ := d.Type(field)
		if !t.Valid() {
			return "", &DataTypeError{Label: d.Name(), Field: field, Type: t}
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte(' ')
		v, present := props[field]
		if !present {
			b.WriteString(Null)
			continue
		}
		lit, err := f.Value(t, v)
		if err != nil {
			return "", withField(err, d.Name(), field)
		}
		b.WriteString(lit)
	}
	return b.String(), nil
}

func withField(err error, label, field string) error {
	var ve *ValueError
	if errors.As(err, &ve) {
		ve.Label, ve.Field = label, field
		return ve
	}
	var de *DataTypeError
	if errors.As(err, &de) {
		de.Label, de.Field = label, field
		return de
	}
	return err
}

func formatFloat(x float64, bits int) string {
	s := strconv.FormatFloat(x, 'f', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// indirect dereferences pointers and returns nil for nil pointers.
func indirect(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return v
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

func toText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	if n, err := toInt64(v, false); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return fmt.Sprint(v)
}

// toInt64 converts integer-like values. Integral floats are accepted only when
// lenient is set, which covers numbers decoded from JSON without UseNumber.
func toInt64(v any, lenient bool) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return uintToInt64(uint64(x))
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return uintToInt64(x)
	case json.Number:
		return strconv.ParseInt(x.String(), 10, 64)
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 10, 64)
	case float64:
		if lenient && x == math.Trunc(x) && x >= math.MinInt64 && x < math.MaxInt64 {
			return int64(x), nil
		}
	case float32:
		f := float64(x)
		if lenient && f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return int64(f), nil
		}
	}
	return 0, errNotInteger
}

func uintToInt64(u uint64) (int64, error) {
	if u > math.MaxInt64 {
		return 0, fmt.Errorf("%d overflows int64", u)
	}
	return int64(u), nil
}

func toFloat64(v any) (float64, int, error) {
	var (
		x    float64
		bits = 64
	)
	switch n := v.(type) {
	case float64:
		x = n
	case float32:
		x, bits = float64(n), 32
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, 0, err
		}
		x = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, 0, err
		}
		x = f
	default:
		i, err := toInt64(v, false)
		if err != nil {
			return 0, 0, errNotFinite
		}
		x = float64(i)
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, 0, errNotFinite
	}
	return x, bits, nil
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, errNotBool
		}
		return b, nil
	}
	return false, errNotBool
}
