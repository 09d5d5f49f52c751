package utils

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// MaskedValue replaces any value judged sensitive
const MaskedValue = "***MASKED***"

// SensitiveDataMasker handles masking of sensitive information in logs
type SensitiveDataMasker struct {
	patterns []SensitivePattern
}

// SensitivePattern defines a pattern for detecting and masking sensitive data
type SensitivePattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	FieldNames  []string // Field names that should be masked
}

// NewSensitiveDataMasker creates a new data masker with default patterns
func NewSensitiveDataMasker() *SensitiveDataMasker {
	patterns := []SensitivePattern{
		{
			Name:        "Bearer Token",
			Regex:       regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._~+/=-]+`),
			Replacement: "Bearer " + MaskedValue,
		},
		{
			Name:        "Authorization Header",
			Regex:       regexp.MustCompile(`(?i)authorization:\s*[^\s]+`),
			Replacement: "Authorization: " + MaskedValue,
		},
		{
			Name: "Sensitive Fields",
			FieldNames: []string{
				"password", "secret", "token",
				"authorization", "cookie",
				"api_key", "apikey", "api-key",
			},
		},
	}

	return &SensitiveDataMasker{
		patterns: patterns,
	}
}

// MaskSensitiveData masks sensitive information in any data structure.
// The input is never modified; maps and slices are copied.
func (m *SensitiveDataMasker) MaskSensitiveData(data interface{}) interface{} {
	if data == nil {
		return nil
	}
	return m.maskValue(reflect.ValueOf(data)).Interface()
}

// MaskFields masks a metadata bag, keeping its concrete type
func (m *SensitiveDataMasker) MaskFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	masked := make(map[string]any, len(fields))
	for k, v := range fields {
		if m.IsSensitiveField(k) {
			masked[k] = MaskedValue
			continue
		}
		masked[k] = m.MaskSensitiveData(v)
	}
	return masked
}

// maskValue recursively masks sensitive data in reflect.Value
func (m *SensitiveDataMasker) maskValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.String:
		return reflect.ValueOf(m.maskString(v.String())).Convert(v.Type())

	case reflect.Map:
		return m.maskMap(v)

	case reflect.Slice:
		if v.IsNil() || v.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		return m.maskSlice(v)

	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		elem := m.maskValue(v.Elem())
		newPtr := reflect.New(elem.Type())
		newPtr.Elem().Set(elem)
		return newPtr

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		return m.maskValue(v.Elem())

	default:
		return v
	}
}

// maskString applies regex patterns to mask sensitive strings
func (m *SensitiveDataMasker) maskString(s string) string {
	masked := s
	for _, pattern := range m.patterns {
		if pattern.Regex != nil {
			masked = pattern.Regex.ReplaceAllString(masked, pattern.Replacement)
		}
	}
	return masked
}

// maskMap masks sensitive data in maps
func (m *SensitiveDataMasker) maskMap(v reflect.Value) reflect.Value {
	if v.IsNil() {
		return v
	}

	newMap := reflect.MakeMapWithSize(v.Type(), v.Len())
	elemType := v.Type().Elem()
	for _, key := range v.MapKeys() {
		keyStr := fmt.Sprintf("%v", key.Interface())
		value := v.MapIndex(key)

		if m.IsSensitiveField(keyStr) {
			newMap.SetMapIndex(key, maskedFor(elemType, value))
			continue
		}
		masked := m.maskValue(value)
		if !masked.Type().AssignableTo(elemType) {
			masked = value
		}
		newMap.SetMapIndex(key, masked)
	}
	return newMap
}

// maskSlice masks sensitive data in slices
func (m *SensitiveDataMasker) maskSlice(v reflect.Value) reflect.Value {
	newSlice := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
	elemType := v.Type().Elem()
	for i := 0; i < v.Len(); i++ {
		masked := m.maskValue(v.Index(i))
		if !masked.Type().AssignableTo(elemType) {
			masked = v.Index(i)
		}
		newSlice.Index(i).Set(masked)
	}
	return newSlice
}

// maskedFor returns the mask placeholder in a form assignable to the map element type
func maskedFor(elemType reflect.Type, original reflect.Value) reflect.Value {
	placeholder := reflect.ValueOf(MaskedValue)
	switch {
	case placeholder.Type().AssignableTo(elemType):
		return placeholder
	case elemType.Kind() == reflect.String:
		return placeholder.Convert(elemType)
	case elemType.Kind() == reflect.Slice && elemType.Elem().Kind() == reflect.String:
		s := reflect.MakeSlice(elemType, 1, 1)
		s.Index(0).Set(placeholder.Convert(elemType.Elem()))
		return s
	default:
		return original
	}
}

// IsSensitiveField checks if a field name indicates sensitive data
func (m *SensitiveDataMasker) IsSensitiveField(fieldName string) bool {
	fieldLower := strings.ToLower(fieldName)

	for _, pattern := range m.patterns {
		for _, sensitiveField := range pattern.FieldNames {
			if strings.Contains(fieldLower, sensitiveField) {
				return true
			}
		}
	}
	return false
}

// MaskHeaders masks sensitive headers (like Authorization)
func (m *SensitiveDataMasker) MaskHeaders(headers map[string][]string) map[string][]string {
	if headers == nil {
		return nil
	}

	maskedHeaders := make(map[string][]string, len(headers))
	for key, values := range headers {
		if m.IsSensitiveField(key) {
			maskedHeaders[key] = []string{MaskedValue}
			continue
		}
		maskedValues := make([]string, len(values))
		for i, value := range values {
			maskedValues[i] = m.maskString(value)
		}
		maskedHeaders[key] = maskedValues
	}
	return maskedHeaders
}
