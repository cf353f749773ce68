package services

import (
	"errors"

	"leadscout/internal/dataprocessing"
)

// Service errors
var (
	// Dataset errors
	ErrNoDataset       = errors.New("no dataset loaded")
	ErrCompanyNotFound = errors.New("company not found")

	// File errors
	ErrUnsupportedFormat = dataprocessing.ErrUnsupportedFormat

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
