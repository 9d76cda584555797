package schema

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidSchema is wrapped by every descriptor validation failure.
var ErrInvalidSchema = errors.New("invalid schema")

var (
	validate          *validator.Validate
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifierPattern.MatchString(fl.Field().String())
	})
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSchema, fmt.Sprintf(format, args...))
}

// Validate checks the descriptor invariants: the label and every field are
// plain identifiers, there is at least one field, fields are unique and each
// has a known type.
func Validate(d *Descriptor) error {
	if d == nil {
		return invalidf("nil descriptor")
	}
	if err := validate.Var(d.name, "required,identifier"); err != nil {
		return invalidf("%s name %q is not an identifier", d.kind, d.name)
	}
	if len(d.fields) == 0 {
		return invalidf("%s %s: at least one field is required", d.kind, d.name)
	}
	seen := make(map[string]struct{}, len(d.fields))
	for _, f := range d.fields {
		if err := validate.Var(f, "required,identifier"); err != nil {
			return invalidf("%s %s: field %q is not an identifier", d.kind, d.name, f)
		}
		if _, dup := seen[f]; dup {
			return invalidf("%s %s: duplicate field %q", d.kind, d.name, f)
		}
		seen[f] = struct{}{}
		t, ok := d.types[f]
		if !ok || t == Invalid {
			return invalidf("%s %s: field %q has no data type", d.kind, d.name, f)
		}
		if !t.Valid() {
			return invalidf("%s %s: field %q has unsupported data type %s", d.kind, d.name, f, t)
		}
	}
	for _, p := range []KeyPolicy{d.keyPolicy, d.srcPolicy, d.dstPolicy} {
		if _, ok := keyPolicyNames[p]; !ok {
			return invalidf("%s %s: unknown key policy %s", d.kind, d.name, p)
		}
	}
	for _, role := range []string{d.srcField, d.dstField, d.rankField} {
		if role == "" {
			continue
		}
		if err := validate.Var(role, "identifier"); err != nil {
			return invalidf("%s %s: role field %q is not an identifier", d.kind, d.name, role)
		}
	}
	return nil
}

func formatValidationError(name string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return invalidf("%s: %v", name, err)
	}
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			return invalidf("%s: %s is required", name, e.Namespace())
		case "min":
			return invalidf("%s: %s must have at least %s entries", name, e.Namespace(), e.Param())
		case "identifier":
			return invalidf("%s: %s %q is not an identifier", name, e.Namespace(), e.Value())
		default:
			return invalidf("%s: %s failed %q", name, e.Namespace(), e.Tag())
		}
	}
	return invalidf("%s: %v", name, err)
}
