package storage

import "errors"

// ErrDuplicate возвращается при нарушении уникальности (username, slug).
var ErrDuplicate = errors.New("duplicate key")
