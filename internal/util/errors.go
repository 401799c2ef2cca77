package util

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("resource not found")
	ErrForbidden         = errors.New("permission denied")
	ErrInvalidCredential = errors.New("invalid credentials")

	ErrDuplicateRequest    = &ConflictError{Reason: "duplicate_request", Message: "Friend request already exists"}
	ErrAlreadyFriends      = &ConflictError{Reason: "already_friends", Message: "Users are already friends"}
	ErrRequestResolved     = &ConflictError{Reason: "request_resolved", Message: "Friend request already handled"}
	ErrInvalidLessonIdx    = fmt.Errorf("%w: lesson index out of range", ErrValidation)
	ErrNothingToPostpone   = fmt.Errorf("%w: session has no incomplete lessons", ErrValidation)
	ErrNothingToShare      = fmt.Errorf("%w: no active sessions to share", ErrValidation)
	ErrInvalidSharePayload = fmt.Errorf("%w: invalid share payload", ErrValidation)
)

// ConflictError 冲突类错误，Reason 供前端展示针对性的提示
type ConflictError struct {
	Reason  string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Validationf 构造带说明的校验错误
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
