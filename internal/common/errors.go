package common

import (
	"errors"
	"fmt"
)

// Error categories the API layer branches on. Services wrap these with
// fmt.Errorf("...: %w", Err...) so callers can match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrBusinessRule      = errors.New("business rule violation")
	ErrGatewayFailure    = errors.New("payment gateway failure")
)

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// InvalidTransitionf wraps ErrInvalidTransition with a formatted message.
func InvalidTransitionf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidTransition)...)
}

// BusinessRulef wraps ErrBusinessRule with a formatted message.
func BusinessRulef(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrBusinessRule)...)
}

// GatewayFailuref wraps ErrGatewayFailure with a formatted message.
func GatewayFailuref(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrGatewayFailure)...)
}
