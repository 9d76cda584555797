package schema

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DataType is the declared type of a property. It governs how a value is
// rendered as a literal, not how the server stores it.
type DataType int

const (
	Invalid DataType = iota
	String
	FixedString
	Int
	Int8
	Int16
	Int32
	Int64
	Float
	Double
	Bool
	Date
	DateTime
	Time
	Timestamp
)

var dataTypeNames = map[DataType]string{
	String:      "string",
	FixedString: "fixed_string",
	Int:         "int",
	Int8:        "int8",
	Int16:       "int16",
	Int32:       "int32",
	Int64:       "int64",
	Float:       "float",
	Double:      "double",
	Bool:        "bool",
	Date:        "date",
	DateTime:    "datetime",
	Time:        "time",
	Timestamp:   "timestamp",
}

// String returns the lower-case nGQL name of the type.
func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

// Valid reports whether t is one of the declared data types.
func (t DataType) Valid() bool {
	_, ok := dataTypeNames[t]
	return ok
}

// IsInteger reports whether the type renders as a bare integer.
func (t DataType) IsInteger() bool {
	switch t {
	case Int, Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

// IsQuoted reports whether values of the type are wrapped in double quotes.
func (t DataType) IsQuoted() bool {
	return t == String || t == FixedString
}

// ParseDataType converts a type name into a DataType. Matching is case
// insensitive and accepts the common aliases used in schema files.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "str", "text":
		return String, nil
	case "fixed_string":
		return FixedString, nil
	case "int", "integer":
		return Int, nil
	case "int8":
		return Int8, nil
	case "int16":
		return Int16, nil
	case "int32":
		return Int32, nil
	case "int64", "long":
		return Int64, nil
	case "float":
		return Float, nil
	case "double":
		return Double, nil
	case "bool", "boolean":
		return Bool, nil
	case "date":
		return Date, nil
	case "datetime":
		return DateTime, nil
	case "time":
		return Time, nil
	case "timestamp":
		return Timestamp, nil
	default:
		return Invalid, fmt.Errorf("unknown data type %q", s)
	}
}

// UnmarshalYAML decodes a DataType from its text name.
func (t *DataType) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseDataType(value.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalYAML encodes a DataType as its text name.
func (t DataType) MarshalYAML() (any, error) {
	return t.String(), nil
}

// KeyPolicy selects how a raw identifier becomes an identity literal.
type KeyPolicy int

const (
	// KeyString wraps the identifier in double quotes.
	KeyString KeyPolicy = iota
	// KeyInt passes an integer identifier through bare.
	KeyInt
	// KeyHash hashes the identifier client side to a signed 64-bit integer.
	KeyHash
	// KeyServerHash emits hash("id") and lets the server compute the vid.
	KeyServerHash
	// KeyUUID derives a name-based UUID from the identifier and quotes it.
	KeyUUID
)

var keyPolicyNames = map[KeyPolicy]string{
	KeyString:     "string_key",
	KeyInt:        "int_key",
	KeyHash:       "hash",
	KeyServerHash: "server_hash",
	KeyUUID:       "uuid",
}

func (p KeyPolicy) String() string {
	if name, ok := keyPolicyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("KeyPolicy(%d)", int(p))
}

// Quoted reports whether the policy yields a quoted literal.
func (p KeyPolicy) Quoted() bool {
	return p == KeyString || p == KeyUUID
}

// ParseKeyPolicy converts a policy name into a KeyPolicy.
func ParseKeyPolicy(s string) (KeyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string", "string_key":
		return KeyString, nil
	case "int", "int_key":
		return KeyInt, nil
	case "hash", "hash_key", "xxhash":
		return KeyHash, nil
	case "server_hash":
		return KeyServerHash, nil
	case "uuid", "uuid_key":
		return KeyUUID, nil
	default:
		return KeyString, fmt.Errorf("unknown key policy %q", s)
	}
}

// UnmarshalYAML decodes a KeyPolicy from its text name.
func (p *KeyPolicy) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseKeyPolicy(value.Value)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML encodes a KeyPolicy as its text name.
func (p KeyPolicy) MarshalYAML() (any, error) {
	return p.String(), nil
}

// Kind distinguishes vertex tags from edge types.
type Kind int

const (
	KindTag Kind = iota
	KindEdge
)

func (k Kind) String() string {
	if k == KindEdge {
		return "edge"
	}
	return "tag"
}
