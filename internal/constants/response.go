package constants

// Standard Response Field Keys
const (
	ResponseFieldMessage    = "message"
	ResponseFieldResponse   = "response"
	ResponseFieldStatusCode = "statusCode"
	ResponseFieldCount      = "count"
	ResponseFieldName       = "name"
	ResponseFieldDetails    = "details"
)

// BuildSuccessResponse wraps a payload in the {message, response, statusCode} envelope.
// A nil payload is rendered as an empty object.
func BuildSuccessResponse(message string, statusCode int, response any) map[string]any {
	if response == nil {
		response = map[string]any{}
	}
	return map[string]any{
		ResponseFieldMessage:    message,
		ResponseFieldResponse:   response,
		ResponseFieldStatusCode: statusCode,
	}
}

func BuildListResponse(message string, statusCode int, response any, count int) map[string]any {
	body := BuildSuccessResponse(message, statusCode, response)
	body[ResponseFieldCount] = count
	return body
}

func BuildErrorResponse(name, message string, statusCode int, details any) map[string]any {
	response := map[string]any{
		ResponseFieldName:       name,
		ResponseFieldMessage:    message,
		ResponseFieldStatusCode: statusCode,
	}

	if details != nil {
		response[ResponseFieldDetails] = details
	}

	return response
}
