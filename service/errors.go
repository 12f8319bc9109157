package service

import "errors"

var (
	errEmptyText       = errors.New("text must not be empty")
	errEmptyBatch      = errors.New("batch must contain at least one document")
	errEmptyObjectPath = errors.New("object path must not be empty")
	errPDFDisabled     = errors.New("pdf ingestion is not configured")
)
