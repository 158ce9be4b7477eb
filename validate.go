package jsonsettings

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// validateStruct walks a settings struct and checks every field against its `conf` tag.
// Nested structs and non-nil struct pointers are validated recursively.
func validateStruct(v reflect.Value, parentPath string) []FieldError {
	var fieldErrors []FieldError

	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldPath := field.Name
		if parentPath != "" {
			fieldPath = parentPath + "." + field.Name
		}

		fieldValue := v.Field(i)
		tags := parseTag(field.Tag.Get("conf"))
		fieldErrors = append(fieldErrors, validateField(fieldValue, fieldPath, tags)...)

		// Recurse into nested settings groups, treating time.Time as a scalar
		inner := fieldValue
		if inner.Kind() == reflect.Ptr && !inner.IsNil() {
			inner = inner.Elem()
		}
		if inner.Kind() == reflect.Struct && inner.Type().PkgPath() != "time" {
			fieldErrors = append(fieldErrors, validateStruct(inner, fieldPath)...)
		}
	}

	return fieldErrors
}

// validateField checks required, min, max and oneof for a single field.
func validateField(fieldValue reflect.Value, fieldPath string, tags tagConfig) []FieldError {
	if fieldValue.IsZero() {
		if tags.required {
			return []FieldError{{
				FieldPath: fieldPath,
				Code:      ErrCodeRequired,
				Message:   "field is required but empty",
			}}
		}
		// Zero values skip range checks
		return nil
	}

	var fieldErrors []FieldError
	if tags.min != "" {
		if fe, ok := checkBound(fieldValue, fieldPath, tags.min, ErrCodeMin); !ok {
			fieldErrors = append(fieldErrors, fe)
		}
	}
	if tags.max != "" {
		if fe, ok := checkBound(fieldValue, fieldPath, tags.max, ErrCodeMax); !ok {
			fieldErrors = append(fieldErrors, fe)
		}
	}
	if len(tags.oneof) > 0 {
		if fe, ok := checkOneof(fieldValue, fieldPath, tags.oneof); !ok {
			fieldErrors = append(fieldErrors, fe)
		}
	}
	return fieldErrors
}

// checkBound compares numbers by value and strings, slices and maps by length.
// Bounds that do not parse are ignored.
func checkBound(fieldValue reflect.Value, fieldPath, bound, code string) (FieldError, bool) {
	limit, err := strconv.ParseFloat(bound, 64)
	if err != nil {
		return FieldError{}, true
	}

	var actual float64
	what := "value"
	switch fieldValue.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		actual = float64(fieldValue.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		actual = float64(fieldValue.Uint())
	case reflect.Float32, reflect.Float64:
		actual = fieldValue.Float()
	case reflect.String, reflect.Slice, reflect.Map:
		actual = float64(fieldValue.Len())
		what = "length"
	default:
		return FieldError{}, true
	}

	if code == ErrCodeMin && actual < limit {
		return FieldError{
			FieldPath: fieldPath,
			Code:      ErrCodeMin,
			Message:   fmt.Sprintf("%s %g is below minimum %g", what, actual, limit),
		}, false
	}
	if code == ErrCodeMax && actual > limit {
		return FieldError{
			FieldPath: fieldPath,
			Code:      ErrCodeMax,
			Message:   fmt.Sprintf("%s %g exceeds maximum %g", what, actual, limit),
		}, false
	}
	return FieldError{}, true
}

// checkOneof compares the field's string form against the allowed options.
func checkOneof(fieldValue reflect.Value, fieldPath string, allowed []string) (FieldError, bool) {
	var valueStr string
	switch fieldValue.Kind() {
	case reflect.String:
		valueStr = fieldValue.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		valueStr = strconv.FormatInt(fieldValue.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		valueStr = strconv.FormatUint(fieldValue.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		valueStr = strconv.FormatFloat(fieldValue.Float(), 'f', -1, 64)
	case reflect.Bool:
		valueStr = strconv.FormatBool(fieldValue.Bool())
	default:
		return FieldError{}, true
	}

	for _, option := range allowed {
		if valueStr == option {
			return FieldError{}, true
		}
	}

	return FieldError{
		FieldPath: fieldPath,
		Code:      ErrCodeOneOf,
		Message:   fmt.Sprintf("value %q must be one of: %s", valueStr, strings.Join(allowed, ", ")),
	}, false
}
