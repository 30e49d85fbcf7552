package validation

import "github.com/Payphone-Digital/auth-service/internal/constants"

// CustomMessage returns per-tag overrides for a json field name, or nil.
func CustomMessage(field string) map[string]string {
	var customValidationMessages = map[string]map[string]string{
		"username": {
			"alphanum": `"username" must only contain alpha-numeric characters`,
		},
		"email": {
			"email": `"email" must be a valid email`,
		},
		"passwordConfirmation": {
			"eqfield": constants.MsgPasswordsMismatch,
		},
		"login": {
			"username_xor_email": `exactly one of "username" or "email" is required`,
		},
	}
	return customValidationMessages[field]
}
