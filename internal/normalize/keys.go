// Package normalize derives display keys for settings fields.
package normalize

import (
	"strings"
	"unicode"
)

// FieldKey returns the key a struct field is serialized under, given its
// Go name and its `json` tag. skip is true for fields tagged `json:"-"`.
// Examples:
//   - ("Port", "")                → "port"
//   - ("Port", `listen_port`)     → "listen_port"
//   - ("Port", `,omitempty`)      → "port"
//   - ("Port", `-`)               → skip
func FieldKey(fieldName, jsonTag string) (key string, skip bool) {
	if jsonTag == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(jsonTag, ",")
	if name != "" {
		return name, false
	}
	return DeriveFieldPath(fieldName), false
}

// DeriveFieldPath lowercases the first letter of a field name.
// Examples:
//   - "Host" → "host"
//   - "APIKey" → "aPIKey"
func DeriveFieldPath(fieldName string) string {
	if fieldName == "" {
		return ""
	}

	runes := []rune(fieldName)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// ApplyPrefix combines a prefix with a key to create a nested path.
// Examples:
//   - ApplyPrefix("window", "width") → "window.width"
//   - ApplyPrefix("", "width") → "width"
func ApplyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix
	}
	return prefix + "." + key
}
