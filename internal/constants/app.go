package constants

// Application Information
const (
	AppName       = "auth-service"
	AppAPIVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Default Application Settings
const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = "8000"
	DefaultEnvironment = EnvDevelopment
)

// Cache Key Prefixes
const (
	CacheKeyPrefix    = "auth:"
	CacheKeyRateLimit = CacheKeyPrefix + "ratelimit:"
)

// Default log levels per environment
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
)
