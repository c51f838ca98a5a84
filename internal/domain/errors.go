package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicateID  = errors.New("pet id already exists")
	ErrInvalidToken = errors.New("invalid verification token")
)
