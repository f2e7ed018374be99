package session

import (
	"time"

	"github.com/jrsteele09/go-session-guard/localstore"
)

// Result is the outcome shared by every Coordinator operation. Error holds a
// localized message when Success is false; Message holds one when it is true.
type Result struct {
	Success bool
	Error   string
	Message string
}

// LoginResult is the outcome of Login.
type LoginResult struct {
	Result
	User         *localstore.Profile
	Locked       bool
	AttemptsLeft int           // set when a failed attempt did not lock
	RetryAfter   time.Duration // set when Locked
	RedirectTo   string        // where to go after a successful login
}

// RegisterResult is the outcome of Register.
type RegisterResult struct {
	Result
	UserID                    string
	RequiresEmailVerification bool
}

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	Email        string
	Password     string
	FullName     string
	EmployeeCode *string
}

func failed(message string) Result {
	return Result{Error: message}
}

func succeeded(message string) Result {
	return Result{Success: true, Message: message}
}
