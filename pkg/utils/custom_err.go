package utils

import "errors"

var (
	ErrDatabaseError = errors.New("database error")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAPIKey      = errors.New("invalid api key")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidCaptcha     = errors.New("invalid captcha")
	ErrAccountBanned      = errors.New("account suspended")
	ErrAccountInactive    = errors.New("account inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSessionInvalid     = errors.New("session expired or invalid")

	ErrQuotaExceeded    = errors.New("daily search limit exceeded")
	ErrInvalidModule    = errors.New("invalid module")
	ErrNoProviderConfig = errors.New("no active provider configuration")
	ErrUpstream         = errors.New("provider request failed")

	ErrInvalidPlan      = errors.New("invalid plan selected")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrGateway          = errors.New("payment gateway error")

	ErrInvalidAction = errors.New("invalid action")
	ErrNotFound      = errors.New("record not found")
	ErrBadRequest    = errors.New("bad request")
)
