package domain

import "errors"

// Task validation errors
var (
	ErrEmptyTitle      = errors.New("task title is required")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
)

// Category validation errors
var (
	ErrEmptyCategoryName = errors.New("category name is required")
)
