package service

import (
	"fmt"
	"strings"
)

type ErrInvalidFileType struct {
	error
}

func NewErrInvalidFileType(filename string) *ErrInvalidFileType {
	return &ErrInvalidFileType{fmt.Errorf("only CSV files allowed: %q", filename)}
}

type ErrMissingColumns struct {
	error
}

func NewErrMissingColumns(columns []string) *ErrMissingColumns {
	return &ErrMissingColumns{fmt.Errorf("CSV must contain columns: %s", strings.Join(columns, ", "))}
}

type ErrFileCorrupted struct {
	error
}

func NewErrFileCorrupted(cause error) *ErrFileCorrupted {
	return &ErrFileCorrupted{fmt.Errorf("failed to process CSV: %w", cause)}
}

type ErrResourceNotFound struct {
	error
}

func NewErrWebhookNotFound(id uint) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("webhook %d not found", id)}
}

type ErrInvalidRequest struct {
	error
}

func NewErrInvalidRequest(cause error) *ErrInvalidRequest {
	return &ErrInvalidRequest{fmt.Errorf("invalid request: %w", cause)}
}
