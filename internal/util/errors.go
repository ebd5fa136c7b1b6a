package util

import "errors"

var (
	ErrEmailRegistered    = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTopicRequired      = errors.New("topic and difficulty are required")
	ErrInvalidDifficulty  = errors.New("difficulty must be beginner, intermediate or advanced")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrSectionNotFound    = errors.New("section not found")
	ErrLessonNotFailed    = errors.New("lesson is not in failed status")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrEmptyGeneration    = errors.New("AI returned no usable lesson content")
	ErrEmptyRewrite       = errors.New("AI returned empty section content")
)
