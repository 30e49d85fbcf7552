package constants

import "time"

// BcryptCost is the fixed work factor for password hashes.
const BcryptCost = 10

// DefaultTokenExpiration applies when a caller signs without an explicit expiration.
const DefaultTokenExpiration = 30 * 24 * time.Hour

// TokenClockSkew is how far in the future a token's issued-at may lie, for
// replicas whose clocks drift apart. Expiry is checked without it.
const TokenClockSkew = time.Minute

// Validation Patterns
const (
	UserIDPattern = `^[0-9]{1,24}$`
)
