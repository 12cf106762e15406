/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Friendship Business Logic Errors
const (
	// ErrTargetNotFound indicates that the user addressed by a friend operation does not exist.
	ErrTargetNotFound = 2101

	// ErrAlreadyFriends indicates a friend request was sent to a user who is already a confirmed friend.
	ErrAlreadyFriends = 2102

	// ErrRequestAlreadyPending indicates an unresolved friend request to the same user already exists.
	ErrRequestAlreadyPending = 2103

	// ErrSelfFriendship indicates a friend operation addressed the acting user themselves.
	ErrSelfFriendship = 2104
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrInvalidUsername indicates that the supplied username is empty or malformed.
	ErrInvalidUsername = 3001

	// ErrInvalidPassword indicates that the supplied password is empty or malformed.
	ErrInvalidPassword = 3002

	// ErrUserAlreadyExists indicates a signup attempt with a username that is already taken.
	ErrUserAlreadyExists = 3003

	// ErrInvalidCredentials indicates a login attempt with an unknown username or wrong password.
	ErrInvalidCredentials = 3004

	// ErrUserNotFound indicates that the acting user's account no longer exists.
	ErrUserNotFound = 3005

	// ErrUnauthorized indicates a missing or invalid bearer token on a protected route.
	ErrUnauthorized = 3006

	// ErrAlreadyLoggedIn indicates an authenticated user hit a signup or login endpoint.
	ErrAlreadyLoggedIn = 3007
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
