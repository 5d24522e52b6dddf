package model

import "errors"

var (
	ErrTypeNotFound   = errors.New("entity type not found")
	ErrDuplicateType  = errors.New("entity type key already exists")
	ErrDuplicateField = errors.New("field key already exists for this type")
)
