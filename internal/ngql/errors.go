package ngql

import (
	"errors"
	"fmt"

	"github.com/vanshika/graphbatch/internal/schema"
)

// Sentinel errors. Typed errors below match them through errors.Is.
var (
	// ErrEmptyInput is returned when an engine is constructed without entities.
	ErrEmptyInput = errors.New("ngql: entity collection is empty")

	// ErrSchemaMismatch is returned when a batch mixes labels.
	ErrSchemaMismatch = errors.New("ngql: schema mismatch")

	// ErrInvalidKey is returned when an identity cannot be rendered under the
	// configured key policy.
	ErrInvalidKey = errors.New("ngql: invalid key")

	// ErrUnsupportedDataType is returned when a field type has no literal form.
	ErrUnsupportedDataType = errors.New("ngql: unsupported data type")

	// ErrInvalidValue is returned when a property value does not fit its
	// declared type.
	ErrInvalidValue = errors.New("ngql: invalid value")
)

// SchemaMismatchError reports the first entity whose schema differs from the
// schema captured by the batch. Index is -1 for an entity passed to
// RenderSingle from outside the batch.
type SchemaMismatchError struct {
	Index int
	Want  *schema.Descriptor
	Got   *schema.Descriptor
}

func (e *SchemaMismatchError) Error() string {
	got := "<nil>"
	if e.Got != nil {
		got = e.Got.String()
	}
	if e.Index < 0 {
		return fmt.Sprintf("ngql: entity has schema %s, batch is %s", got, e.Want)
	}
	return fmt.Sprintf("ngql: entity %d has schema %s, batch is %s", e.Index, got, e.Want)
}

// Is reports whether the target is ErrSchemaMismatch.
func (e *SchemaMismatchError) Is(err error) bool {
	return err == ErrSchemaMismatch
}

// KeyError reports an identity value that cannot be rendered. Role is "vid",
// "src", "dst" or "rank".
type KeyError struct {
	Label  string
	Role   string
	Policy schema.KeyPolicy
	Value  any
	Err    error
}

func (e *KeyError) Error() string {
	prefix := "ngql: invalid key"
	if e.Label != "" {
		prefix = fmt.Sprintf("ngql: %s: invalid %s", e.Label, e.Role)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %v (%s): %v", prefix, e.Value, e.Policy, e.Err)
	}
	return fmt.Sprintf("%s %v (%s)", prefix, e.Value, e.Policy)
}

// Is reports whether the target is ErrInvalidKey.
func (e *KeyError) Is(err error) bool {
	return err == ErrInvalidKey
}

// Unwrap returns the underlying parse error, if any.
func (e *KeyError) Unwrap() error {
	return e.Err
}

// DataTypeError reports a field whose declared type cannot be rendered.
type DataTypeError struct {
	Label string
	Field string
	Type  schema.DataType
}

func (e *DataTypeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("ngql: unsupported data type %s", e.Type)
	}
	return fmt.Sprintf("ngql: %s.%s: unsupported data type %s", e.Label, e.Field, e.Type)
}

// Is reports whether the target is ErrUnsupportedDataType.
func (e *DataTypeError) Is(err error) bool {
	return err == ErrUnsupportedDataType
}

// ValueError reports a property value that does not fit its declared type.
type ValueError struct {
	Label string
	Field string
	Type  schema.DataType
	Value any
	Err   error
}

func (e *ValueError) Error() string {
	msg := fmt.Sprintf("ngql: cannot render %T(%v) as %s", e.Value, e.Value, e.Type)
	if e.Field != "" {
		msg = fmt.Sprintf("ngql: %s.%s: cannot render %T(%v) as %s", e.Label, e.Field, e.Value, e.Value, e.Type)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether the target is ErrInvalidValue.
func (e *ValueError) Is(err error) bool {
	return err == ErrInvalidValue
}

// Unwrap returns the underlying conversion error, if any.
func (e *ValueError) Unwrap() error {
	return e.Err
}

// IsEmptyInput reports whether err is an empty-input failure.
func IsEmptyInput(err error) bool {
	return errors.Is(err, ErrEmptyInput)
}

// IsSchemaMismatch reports whether err is a schema mismatch.
func IsSchemaMismatch(err error) bool {
	return errors.Is(err, ErrSchemaMismatch)
}

// IsInvalidKey reports whether err is a key resolution failure.
func IsInvalidKey(err error) bool {
	return errors.Is(err, ErrInvalidKey)
}

// IsUnsupportedDataType reports whether err is an unsupported data type.
func IsUnsupportedDataType(err error) bool {
	return errors.Is(err, ErrUnsupportedDataType)
}

// IsInvalidValue reports whether err is a value conversion failure.
func IsInvalidValue(err error) bool {
	return errors.Is(err, ErrInvalidValue)
}

// ErrorKind classifies err for metrics and log labels.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsEmptyInput(err):
		return "empty_input"
	case IsSchemaMismatch(err):
		return "schema_mismatch"
	case IsInvalidKey(err):
		return "invalid_key"
	case IsUnsupportedDataType(err):
		return "unsupported_type"
	case IsInvalidValue(err):
		return "invalid_value"
	case errors.Is(err, schema.ErrInvalidSchema):
		return "invalid_schema"
	default:
		return "other"
	}
}
