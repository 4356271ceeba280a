package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound - сущность не существует или скрыта от зрителя.
	// Оба случая неразличимы снаружи.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied - зритель аутентифицирован, но не является автором.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnauthenticated - анонимный зритель пытается что-то изменить.
	ErrUnauthenticated = errors.New("authentication required")
)

// ValidationError содержит ошибки по полям формы.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError создает пустой набор ошибок.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add запоминает первую ошибку для поля.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// Empty сообщает, что ошибок нет.
func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

// OrNil возвращает nil, если ошибок нет. Удобно в return.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
