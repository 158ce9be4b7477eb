package jsonsettings

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/Azhovan/jsonsettings/internal/normalize"
)

// redacted replaces the value of `conf:"secret"` fields in dumps.
const redacted = "***redacted***"

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

// dumpConfig holds options for Dump.
type dumpConfig struct {
	asJSON bool   // Output as JSON instead of text format
	indent string // Indentation for JSON output (default: "  ")
}

// AsJSON outputs settings as JSON instead of text format.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.asJSON = true
	}
}

// WithIndent sets the indentation for JSON output.
// Default is two spaces ("  "). Empty means compact.
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// Dump writes a human-readable representation of the payload.
// Fields tagged `conf:"secret"` are redacted as "***redacted***".
// Keys follow `conf:"name:..."`, then the `json` tag, then the field name.
func (s *Settings[T]) Dump(w io.Writer, opts ...DumpOption) error {
	return Dump(w, s.payload, opts...)
}

// Dump writes a human-readable representation of cfg.
// A *Object is dumped as its keys and values.
func Dump[T any](w io.Writer, cfg *T, opts ...DumpOption) error {
	if cfg == nil {
		return fmt.Errorf("settings are nil")
	}

	config := dumpConfig{indent: "  "}
	for _, opt := range opts {
		opt(&config)
	}

	if obj, ok := any(cfg).(*Object); ok {
		return dumpObject(w, obj, config)
	}

	v := reflect.ValueOf(cfg).Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("settings must be a struct, got %s", v.Kind())
	}

	if config.asJSON {
		return writeJSON(w, buildJSONStructure(v), config)
	}

	for _, field := range collectFields(v, "") {
		if _, err := fmt.Fprintf(w, "%s: %s\n", field.keyPath, field.displayValue); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	}
	return nil
}

func dumpObject(w io.Writer, obj *Object, config dumpConfig) error {
	if config.asJSON {
		return writeJSON(w, obj, config)
	}
	for _, k := range obj.Keys() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", k, obj.Get(k)); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any, config dumpConfig) error {
	var data []byte
	var err error
	if config.indent != "" {
		data, err = json.MarshalIndent(v, "", config.indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// fieldData holds information about a single field for dumping.
type fieldData struct {
	keyPath      string // Dot-separated key path (e.g., "window.width")
	displayValue string // Value to display (redacted if secret)
}

// dumpKey returns the display key of a field and whether it is skipped.
func dumpKey(field reflect.StructField, tags tagConfig) (string, bool) {
	if tags.name != "" {
		return tags.name, false
	}
	return normalize.FieldKey(field.Name, field.Tag.Get("json"))
}

// isGroup reports whether a field value is a nested struct dumped field by field.
func isGroup(v reflect.Value) bool {
	if v.Kind() != reflect.Struct || v.Type().PkgPath() == "time" {
		return false
	}
	return v.Type() != reflect.TypeOf(Value{}) && v.Type() != reflect.TypeOf(Object{})
}

// collectFields recursively walks a struct and collects field data.
func collectFields(v reflect.Value, prefix string) []fieldData {
	var fields []fieldData

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tags := parseTag(field.Tag.Get("conf"))
		key, skip := dumpKey(field, tags)
		if skip {
			continue
		}
		keyPath := normalize.ApplyPrefix(prefix, key)

		fieldValue := v.Field(i)
		if !tags.secret && isGroup(fieldValue) {
			fields = append(fields, collectFields(fieldValue, keyPath)...)
			continue
		}

		display := redacted
		if !tags.secret {
			display = formatValueAsString(fieldValue)
		}
		fields = append(fields, fieldData{keyPath: keyPath, displayValue: display})
	}

	return fields
}

// buildJSONStructure recursively builds a nested map for JSON output.
func buildJSONStructure(v reflect.Value) map[string]any {
	result := make(map[string]any)

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tags := parseTag(field.Tag.Get("conf"))
		key, skip := dumpKey(field, tags)
		if skip {
			continue
		}

		fieldValue := v.Field(i)
		switch {
		case tags.secret:
			result[key] = redacted
		case isGroup(fieldValue):
			result[key] = buildJSONStructure(fieldValue)
		default:
			result[key] = formatValueForJSON(fieldValue)
		}
	}

	return result
}

// formatValueForJSON returns the value for JSON marshaling.
func formatValueForJSON(v reflect.Value) any {
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return nil
	}
	switch x := v.Interface().(type) {
	case time.Duration:
		return x.String()
	case Object:
		return &x
	}
	return v.Interface()
}

// formatValueAsString formats a field value as a string for text output.
func formatValueAsString(v reflect.Value) string {
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return "<nil>"
	}

	switch x := v.Interface().(type) {
	case time.Duration:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	case Value:
		return x.String()
	case Object:
		return ObjectValue(&x).String()
	}

	switch v.Kind() {
	case reflect.String:
		return fmt.Sprintf("%q", v.String())
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.String {
			strs := make([]string, v.Len())
			for i := 0; i < v.Len(); i++ {
				strs[i] = v.Index(i).String()
			}
			return fmt.Sprintf("[%s]", strings.Join(strs, ", "))
		}
		return fmt.Sprintf("%v", v.Interface())
	case reflect.Ptr:
		return formatValueAsString(v.Elem())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
