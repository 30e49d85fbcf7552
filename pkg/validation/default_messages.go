package validation

import (
	"fmt"
)

// DefaultMessage renders a readable message for a failed validator tag.
func DefaultMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "alphanum":
		return fmt.Sprintf("%q must only contain alpha-numeric characters", field)
	case "alpha":
		return fmt.Sprintf("%q must only contain letters", field)
	case "numeric":
		return fmt.Sprintf("%q must be a number", field)
	case "min":
		return fmt.Sprintf("%q length must be at least %s characters long", field, param)
	case "max":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, param)
	case "len":
		return fmt.Sprintf("%q length must be %s characters long", field, param)
	case "eqfield":
		return fmt.Sprintf("%q must match %q", field, param)
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, param)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// Message prefers a field override and falls back to DefaultMessage.
func Message(field, tag, param string) string {
	if fieldMessages := CustomMessage(field); fieldMessages != nil {
		if msg, ok := fieldMessages[tag]; ok {
			return msg
		}
	}
	return DefaultMessage(field, tag, param)
}
