package port

import "errors"

// Sentinel errors used across ports. Services wrap these with context via
// fmt.Errorf("%w") and handlers map them to HTTP statuses with errors.Is.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("token invalid")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountSuspended    = errors.New("account suspended")
	ErrUserExists          = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrAdminDeleteRefused  = errors.New("admin accounts cannot be deleted")
	ErrRefreshTokenInvalid = errors.New("refresh token invalid")
	ErrCartItemNotFound    = errors.New("cart item not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrValidation          = errors.New("validation failed")
)
