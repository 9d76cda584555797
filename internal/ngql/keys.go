package ngql

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/vanshika/graphbatch/internal/schema"
)

// KeyNamespace is the UUID namespace used by the uuid key policy. Changing it
// changes every generated vid.
var KeyNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("graphbatch.vid"))

var (
	errMissingKey = errors.New("key is missing")
	errEmptyKey   = errors.New("key is empty")
)

// ResolveKey renders a raw identifier under policy with the default formatter.
func ResolveKey(policy schema.KeyPolicy, raw any) (string, error) {
	return Formatter{}.Key(policy, raw)
}

// ResolveRank renders an edge rank with the default formatter.
func ResolveRank(raw any) (string, bool, error) {
	return Formatter{}.Rank(raw)
}

// Key renders a raw identifier as an identity literal.
//
//	KeyString     "13"
//	KeyInt        100
//	KeyHash       -4898915327853232180
//	KeyServerHash hash("13")
//	KeyUUID       "0b6c2c5f-..."
func (f Formatter) Key(policy schema.KeyPolicy, raw any) (string, error) {
	raw = indirect(raw)
	if raw == nil {
		return "", &KeyError{Policy: policy, Value: raw, Err: errMissingKey}
	}

	if policy == schema.KeyInt {
		n, err := toInt64(raw, false)
		if err != nil {
			return "", &KeyError{Policy: policy, Value: raw, Err: err}
		}
		return strconv.FormatInt(n, 10), nil
	}

	if policy == schema.KeyUUID {
		if id, ok := raw.(uuid.UUID); ok {
			return `"` + id.String() + `"`, nil
		}
	}

	text, err := keyText(raw)
	if err != nil {
		return "", &KeyError{Policy: policy, Value: raw, Err: err}
	}

	switch policy {
	case schema.KeyString:
		return f.Quote(text), nil
	case schema.KeyHash:
		return strconv.FormatInt(int64(xxhash.Sum64String(text)), 10), nil
	case schema.KeyServerHash:
		return "hash(" + f.Quote(text) + ")", nil
	case schema.KeyUUID:
		return `"` + uuid.NewSHA1(KeyNamespace, []byte(text)).String() + `"`, nil
	}
	return "", &KeyError{Policy: policy, Value: raw, Err: fmt.Errorf("unknown policy %s", policy)}
}

// Rank renders an edge rank. ok is false when raw is nil and the rank should
// be left to the server default.
func (f Formatter) Rank(raw any) (lit string, ok bool, err error) {
	raw = indirect(raw)
	if raw == nil {
		return "", false, nil
	}
	n, err := toInt64(raw, true)
	if err != nil {
		return "", false, &KeyError{Role: "rank", Policy: schema.KeyInt, Value: raw, Err: err}
	}
	return strconv.FormatInt(n, 10), true, nil
}

// keyText turns string-like and integer identifiers into text. Floats and
// composite values are rejected since their text form is ambiguous.
func keyText(raw any) (string, error) {
	switch x := raw.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return "", errEmptyKey
		}
		return x, nil
	case []byte:
		if len(x) == 0 {
			return "", errEmptyKey
		}
		return string(x), nil
	case json.Number:
		return x.String(), nil
	case float32, float64, bool:
		return "", fmt.Errorf("%T is not a valid key type", raw)
	case fmt.Stringer:
		s := x.String()
		if s == "" {
			return "", errEmptyKey
		}
		return s, nil
	}
	n, err := toInt64(raw, false)
	if err != nil {
		return "", fmt.Errorf("%T is not a valid key type", raw)
	}
	return strconv.FormatInt(n, 10), nil
}

// withRole fills in the label and role of a KeyError.
func withRole(err error, label, role string) error {
	var ke *KeyError
	if errors.As(err, &ke) {
		ke.Label = label
		if ke.Role == "" {
			ke.Role = role
		}
		return ke
	}
	return err
}
