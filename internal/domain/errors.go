package domain

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrUnauthorized        = errors.New("not authorized")
	ErrDuplicateReferral   = errors.New("referral already exists")
	ErrInsufficientBalance = errors.New("insufficient available balance")
	ErrBelowMinimum        = errors.New("amount below minimum withdrawal")
	ErrValidation          = errors.New("invalid content")
)
