package constants

// Context keys set by the middleware
const (
	ContextKeyUserID       = "user_id"
	ContextKeyUser         = "user"
	ContextKeyCapabilities = "capabilities"
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Validation limits
const (
	MinPasswordLength = 8
)

// Session settings
const (
	SessionCookieName = "callingtrack_session"

	// SessionKeyUserID is the session value holding the logged-in user's ID
	SessionKeyUserID = "user_id"
)
