package service

import "errors"

var (
	ErrTargetNotFound = errors.New("payment target not found")
)
