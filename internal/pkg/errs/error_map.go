/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Friendship Business Logic Errors
	ErrTargetNotFound:        {Code: ErrTargetNotFound, Message: "User not found.", Status: http.StatusNotFound},
	ErrAlreadyFriends:        {Code: ErrAlreadyFriends, Message: "Already friends.", Status: http.StatusBadRequest},
	ErrRequestAlreadyPending: {Code: ErrRequestAlreadyPending, Message: "Friend request already sent.", Status: http.StatusBadRequest},
	ErrSelfFriendship:        {Code: ErrSelfFriendship, Message: "You cannot send a friend request to yourself.", Status: http.StatusBadRequest},

	// 3xxx: User, Session, and Security Errors
	ErrInvalidUsername:    {Code: ErrInvalidUsername, Message: "Invalid username.", Status: http.StatusBadRequest},
	ErrInvalidPassword:    {Code: ErrInvalidPassword, Message: "Invalid password.", Status: http.StatusBadRequest},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Message: "User already exists.", Status: http.StatusBadRequest},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Message: "Incorrect username or password.", Status: http.StatusBadRequest},
	ErrUserNotFound:       {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusNotFound},
	ErrUnauthorized:       {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrAlreadyLoggedIn:    {Code: ErrAlreadyLoggedIn, Message: "You are already signed in.", Status: http.StatusBadRequest},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
