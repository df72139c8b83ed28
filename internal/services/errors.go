package services

import "errors"

// Sentinel errors consumed by the request boundary, which maps them to
// response status codes. Store-level constraint errors (duplicate key, bad
// reference) live in the store package.
var (
	// ErrNotFound indicates the target record does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden indicates a valid principal without sufficient rights.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFoundOrForbidden is the collapsed case for owner-scoped cat
	// mutations: a zero affected-row count cannot distinguish a missing cat
	// from one owned by somebody else.
	ErrNotFoundOrForbidden = errors.New("resource not found or not owned by caller")

	// ErrInvalidCredentials covers both unknown username and wrong password,
	// so login failures do not reveal which part was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
