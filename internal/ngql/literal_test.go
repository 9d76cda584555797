package ngql

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/graphbatch/internal/schema"
)

func TestLiteral(t *testing.T) {
	var nilName *string
	age := 12
	ts := time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)

	tests := []struct {
		name string
		typ  schema.DataType
		in   any
		want string
	}{
		{"string", schema.String, "n3", `"n3"`},
		{"escaped quote", schema.String, `say "hi"`, `"say \"hi\""`},
		{"escaped controls", schema.String, "a\\b\nc\td", `"a\\b\nc\td"`},
		{"fixed string", schema.FixedString, "abc", `"abc"`},
		{"string from int", schema.String, 42, `"42"`},
		{"nil", schema.String, nil, "NULL"},
		{"nil pointer", schema.String, nilName, "NULL"},
		{"int", schema.Int, 12, "12"},
		{"int pointer", schema.Int64, &age, "12"},
		{"int8", schema.Int8, int8(-3), "-3"},
		{"int from json float", schema.Int, 12.0, "12"},
		{"int from string", schema.Int32, " 7 ", "7"},
		{"uint", schema.Int64, uint32(9), "9"},
		{"double", schema.Double, 1.5, "1.5"},
		{"double integral", schema.Double, 2.0, "2.0"},
		{"double from int", schema.Double, 3, "3.0"},
		{"float32", schema.Float, float32(0.1), "0.1"},
		{"bool", schema.Bool, true, "true"},
		{"bool from string", schema.Bool, "false", "false"},
		{"date", schema.Date, ts, `date("2024-03-01")`},
		{"date string", schema.Date, "2024-03-01", `date("2024-03-01")`},
		{"datetime", schema.DateTime, ts, `datetime("2024-03-01T10:20:30.000000")`},
		{"time", schema.Time, ts, `time("10:20:30.000000")`},
		{"timestamp", schema.Timestamp, ts, "1709288430"},
		{"timestamp int", schema.Timestamp, int64(1709288430), "1709288430"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Literal(tt.typ, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLiteralRawStrings(t *testing.T) {
	f := Formatter{RawStrings: true}
	got, err := f.Value(schema.String, `say "hi"`)
	require.NoError(t, err)
	assert.Equal(t, `"say "hi""`, got)
}

func TestLiteralErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  schema.DataType
		in   any
		is   error
	}{
		{"fractional int", schema.Int, 12.5, ErrInvalidValue},
		{"word as int", schema.Int, "twelve", ErrInvalidValue},
		{"uint overflow", schema.Int64, uint64(math.MaxUint64), ErrInvalidValue},
		{"nan", schema.Double, math.NaN(), ErrInvalidValue},
		{"inf", schema.Float, math.Inf(1), ErrInvalidValue},
		{"bool word", schema.Bool, "yes", ErrInvalidValue},
		{"date from int", schema.Date, 5, ErrInvalidValue},
		{"unknown type", schema.DataType(99), "x", ErrUnsupportedDataType},
		{"unknown type nil", schema.DataType(99), nil, ErrUnsupportedDataType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Literal(tt.typ, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.is)
		})
	}
}

func TestUnsupportedFieldTypeNeverRendersNull(t *testing.T) {
	b := schema.NewTag("t").Field("name", schema.String).Field("blob", schema.DataType(99))
	_, err := b.Build()
	require.ErrorIs(t, err, schema.ErrInvalidSchema)
	assert.Contains(t, err.Error(), `"blob"`)
	assert.Panics(t, func() { b.MustBuild() })
}

func TestValuesFollowsFieldOrder(t *testing.T) {
	d := schema.NewTag("t3").
		Field("c", schema.Int).
		Field("a", schema.String).
		Field("b", schema.Bool).
		MustBuild()

	got, err := Formatter{}.Values(d, map[string]any{"a": "x", "b": true, "c": 1})
	require.NoError(t, err)
	assert.Equal(t, ` 1, "x", true`, got)

	got, err = Formatter{}.Values(d, map[string]any{"a": "x"})
	require.NoError(t, err)
	assert.Equal(t, ` NULL, "x", NULL`, got)
}

func TestValuesReportsField(t *testing.T) {
	d := schema.NewTag("t2").Field("name", schema.String).Field("age", schema.Int).MustBuild()

	_, err := Formatter{}.Values(d, map[string]any{"name": "n", "age": "old"})
	var ve *ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "t2", ve.Label)
	assert.Equal(t, "age", ve.Field)
	assert.Equal(t, "invalid_value", ErrorKind(err))
}
