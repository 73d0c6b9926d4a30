package validator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stelform/adminkit/internal/domain"
)

// FormValidator checks submitted property values against a field pipeline's
// declared types and form directives before they reach a batch.
type FormValidator struct{}

// NewFormValidator creates a new form validator
func NewFormValidator() *FormValidator {
	return &FormValidator{}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors"`
}

// ValidateProperties validates a full submission against the pipeline's
// field descriptors: required directives are enforced, properties whose key
// does not match any declared field are rejected and summary fields may not
// be submitted.
func (fv *FormValidator) ValidateProperties(properties map[string]any, p domain.Pipeline) ValidationResult {
	return fv.validate(properties, p, false)
}

// ValidatePartial validates a partial submission, as carried by update
// bodies that merge into an existing record. Required directives are not
// enforced; everything else applies.
func (fv *FormValidator) ValidatePartial(properties map[string]any, p domain.Pipeline) ValidationResult {
	return fv.validate(properties, p, true)
}

func (fv *FormValidator) validate(properties map[string]any, p domain.Pipeline, partial bool) ValidationResult {
	result := ValidationResult{
		IsValid: true,
		Errors:  []ValidationError{},
	}

	fields := p.Flatten()
	known := make(map[string]domain.FieldDescriptor, len(fields))
	for _, field := range fields {
		known[field.ID] = field
	}

	for _, field := range fields {
		value, exists := properties[field.ID]

		if !partial && field.Form != nil && field.Form.Required && (!exists || value == nil || value == "") {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   field.ID,
				Message: fmt.Sprintf("required field '%s' is missing", field.ID),
			})
			continue
		}

		if !exists || value == nil || value == "" {
			continue
		}

		if len(field.SummaryOf) > 0 {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   field.ID,
				Message: fmt.Sprintf("field '%s' is a synthesized summary and cannot be submitted", field.ID),
				Value:   value,
			})
			continue
		}

		if err := fv.validateFieldValue(field, value); err != nil {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   field.ID,
				Message: err.Error(),
				Value:   value,
			})
		}
	}

	for key := range properties {
		if _, ok := known[key]; !ok {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   key,
				Message: fmt.Sprintf("property '%s' is not declared by the pipeline", key),
				Value:   properties[key],
			})
		}
	}

	return result
}

// validateFieldValue checks one value against its field's semantic type.
func (fv *FormValidator) validateFieldValue(field domain.FieldDescriptor, value any) error {
	switch field.Type {
	case domain.FieldTypeText, domain.FieldTypeTextArea, domain.FieldTypeRichText, domain.FieldTypeFile:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("field '%s' must be a string, got %T", field.ID, value)
		}

	case domain.FieldTypeNumber, domain.FieldTypePrice:
		if !isNumeric(value) {
			return fmt.Errorf("field '%s' must be numeric, got %T", field.ID, value)
		}

	case domain.FieldTypeDate:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("field '%s' must be a date string, got %T", field.ID, value)
		}
		if _, err := time.Parse("2006-01-02", str); err != nil {
			return fmt.Errorf("field '%s' must be a date (YYYY-MM-DD): %v", field.ID, err)
		}

	case domain.FieldTypeMonth:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("field '%s' must be a month string, got %T", field.ID, value)
		}
		if _, err := time.Parse("2006-01", str); err != nil {
			return fmt.Errorf("field '%s' must be a month (YYYY-MM): %v", field.ID, err)
		}

	case domain.FieldTypeBoolean:
		switch v := value.(type) {
		case bool:
		case string:
			if v != "true" && v != "false" {
				return fmt.Errorf("field '%s' must be a boolean, got %q", field.ID, v)
			}
		default:
			return fmt.Errorf("field '%s' must be a boolean, got %T", field.ID, value)
		}

	case domain.FieldTypeSelect:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("field '%s' must be a string option value, got %T", field.ID, value)
		}
		return validateStaticOption(field, str)

	case domain.FieldTypeMultiSelect:
		values, err := stringSlice(value)
		if err != nil {
			return fmt.Errorf("field '%s' %v", field.ID, err)
		}
		for _, str := range values {
			if err := validateStaticOption(field, str); err != nil {
				return err
			}
		}

	default:
		return fmt.Errorf("unknown field type: %s", field.Type)
	}

	return nil
}

// validateStaticOption rejects values outside a literal option list. Query
// and code-table sources are resolved elsewhere, so membership there is not
// checked at submission time.
func validateStaticOption(field domain.FieldDescriptor, value string) error {
	if field.Select == nil || len(field.Select.Options) == 0 {
		return nil
	}
	for _, option := range field.Select.Options {
		if option.Value == value {
			return nil
		}
	}
	return fmt.Errorf("field '%s' value %q is not one of its declared options", field.ID, value)
}

func isNumeric(value any) bool {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return true
	case uint, uint8, uint16, uint32, uint64:
		return true
	case float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil
	default:
		return false
	}
}

func stringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("must be an array of strings, got %T element", item)
			}
			out[i] = str
		}
		return out, nil
	default:
		return nil, fmt.Errorf("must be an array of strings, got %T", value)
	}
}
