/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to CustomError templates, used to
standardize WebSocket error events and HTTP responses.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// A zero Status means the error is delivered in-band (WebSocket event or
// HTTP 200 envelope) rather than as an HTTP error status.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling and Validation Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrInvalidNickname:      {Code: ErrInvalidNickname, Message: "Nickname must be 3-20 characters of English letters, numbers, and underscores."},
	ErrInvalidMessage:       {Code: ErrInvalidMessage, Message: "Message must be 1-100 characters."},

	// 2xxx: Chat Business Logic Errors
	ErrNicknameTaken:     {Code: ErrNicknameTaken, Message: "Nickname already taken."},
	ErrUserNotFound:      {Code: ErrUserNotFound, Message: "User not found."},
	ErrLinkNotAllowed:    {Code: ErrLinkNotAllowed, Message: "Links are not allowed."},
	ErrMentionNotAllowed: {Code: ErrMentionNotAllowed, Message: "Mentions are not allowed."},
	ErrDuplicateMessage:  {Code: ErrDuplicateMessage, Message: "You already sent that message."},

	// 3xxx: Identity, Moderation, and Authorization Errors
	ErrIdentityRequired: {Code: ErrIdentityRequired, Message: "You must set a nickname first."},
	ErrBanned:           {Code: ErrBanned, Message: "You are banned from this chat."},
	ErrNotAdmin:         {Code: ErrNotAdmin, Message: "Only admin can ban users."},
	ErrAdminImmune:      {Code: ErrAdminImmune, Message: "Cannot ban admin."},
	ErrForbidden:        {Code: ErrForbidden, Message: "Forbidden.", Status: http.StatusForbidden},

	// 5xxx: Internal System Errors
	ErrUnknown:     {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrPersistence: {Code: ErrPersistence, Message: "Snapshot store is unavailable.", Status: http.StatusServiceUnavailable},
}
