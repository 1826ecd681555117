/*
Package errs provides custom error types and application-level error code constants.

Codes are grouped by concern: 1xxx request/validation failures, 2xxx chat
business conflicts, 3xxx identity/moderation/authorization failures, and
5xxx internal system errors.
*/
package errs

// 1xxx: General Request Handling and Validation Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a malformed JSON request body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate exceeded the configured limit.
	ErrRateLimitExceeded = 1007

	// ErrInvalidNickname indicates a nickname failing length or charset validation.
	ErrInvalidNickname = 1101

	// ErrInvalidMessage indicates a chat message failing length validation after trimming.
	ErrInvalidMessage = 1102
)

// 2xxx: Chat Business Logic Errors
const (
	// ErrNicknameTaken indicates that the requested nickname is already registered
	// or permanently retired by a ban.
	ErrNicknameTaken = 2101

	// ErrUserNotFound indicates that the target user id is unknown.
	ErrUserNotFound = 2102

	// ErrLinkNotAllowed indicates a message rejected because it contains a URL-like token.
	ErrLinkNotAllowed = 2201

	// ErrMentionNotAllowed indicates a message rejected because it contains an @mention.
	ErrMentionNotAllowed = 2202

	// ErrDuplicateMessage indicates a message identical to the sender's previous one.
	ErrDuplicateMessage = 2203
)

// 3xxx: Identity, Moderation, and Authorization Errors
const (
	// ErrIdentityRequired indicates an operation attempted before a nickname was set.
	ErrIdentityRequired = 3001

	// ErrBanned indicates that the acting identity, nickname, or IP is on a ban list.
	ErrBanned = 3002

	// ErrNotAdmin indicates a non-admin identity attempting an admin-only action.
	ErrNotAdmin = 3003

	// ErrAdminImmune indicates an attempt to ban the admin identity.
	ErrAdminImmune = 3004

	// ErrForbidden indicates a failed admin shared-secret check on an HTTP endpoint.
	ErrForbidden = 3101
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000

	// ErrPersistence indicates that the external snapshot store was unreachable.
	ErrPersistence = 5001
)
