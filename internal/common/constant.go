package common

// AccessTokenHeaderName is the HTTP header carrying the raw access token.
// The value is the token itself, without a "Bearer " prefix.
const AccessTokenHeaderName = "Authorization"

// DefaultBcryptCost is the bcrypt work factor used when none is configured.
const DefaultBcryptCost = 10
