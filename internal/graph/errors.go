package graph

import (
	"errors"

	"message-board/internal/domain"
)

// fault is surfaced to clients as a GraphQL error with a machine readable code.
type fault struct {
	code string
	msg  string
}

func (f *fault) Error() string {
	return f.msg
}

func (f *fault) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": f.code}
}

func classify(err error) *fault {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return &fault{code: "INVALID_INPUT", msg: err.Error()}
	case errors.Is(err, domain.ErrDuplicateUsername):
		return &fault{code: "DUPLICATE_USERNAME", msg: "username already exists"}
	case errors.Is(err, domain.ErrMalformedIdentifier):
		return &fault{code: "MALFORMED_IDENTIFIER", msg: err.Error()}
	case errors.Is(err, domain.ErrHashFailure):
		return &fault{code: "HASH_FAILURE", msg: "could not hash password"}
	case domain.IsStoreError(err):
		return &fault{code: "STORE_ERROR", msg: "store unavailable"}
	default:
		return &fault{code: "INTERNAL", msg: "internal error"}
	}
}

func clientFault(code string) bool {
	return code == "INVALID_INPUT" || code == "DUPLICATE_USERNAME" || code == "MALFORMED_IDENTIFIER"
}
