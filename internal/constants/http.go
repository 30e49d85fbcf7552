package constants

// HTTP Header Names
const (
	HeaderAuthorization       = "Authorization"
	HeaderUserAgent           = "User-Agent"
	HeaderXRequestID          = "X-Request-ID"
	HeaderRetryAfter          = "Retry-After"
	HeaderXRateLimitLimit     = "X-RateLimit-Limit"
	HeaderXRateLimitRemaining = "X-RateLimit-Remaining"
)

// BearerScheme is the only accepted Authorization scheme.
const BearerScheme = "Bearer"

// Success messages
const (
	MsgUserRegistered  = "User registration completed"
	MsgUserLoggedIn    = "User logged in successfully"
	MsgPasswordUpdated = "Password updated successfully"
	MsgUserListFetched = "User list fetched successfully"
	MsgUserFetched     = "User fetched successfully"
)

// Error messages returned to clients
const (
	MsgCredentialsInUse   = "The email or username are already associated to an account."
	MsgInvalidCredentials = "Invalid credentials. Make sure the username/email and password are correct."
	MsgUnauthorized       = "Unauthorized."
	MsgUnexpected         = "An unexpected error happened processing your request."
	MsgValidationFailed   = "Your request did not pass the validation"
	MsgInvalidID          = "The id provided in the URL is not valid."
	MsgRouteNotFound      = "Route not found, check for typos or method"
	MsgTooManyRequests    = "Too many requests. Please try again later."
	MsgPasswordsMismatch  = "Passwords do not match"
)
