package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrUnknownCommand     = fmt.Errorf("unknown command")
	ErrMissingArgument    = fmt.Errorf("missing argument")
	ErrPermissionDenied   = fmt.Errorf("permission denied")
	ErrWrongPassword      = fmt.Errorf("wrong admin password")
	ErrPlayerNotFound     = fmt.Errorf("player not found")
	ErrNoGameInProgress   = fmt.Errorf("no game in progress")
	ErrGameNotFound       = fmt.Errorf("game not found")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("invalid password")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidToken       = fmt.Errorf("invalid token")
)
