package domain

import "errors"

var (
	ErrNoPhotos      = errors.New("ad has no gallery image")
	ErrMissingAdID   = errors.New("ad id not found in url")
	ErrPriceNotFound = errors.New("price not found")
	ErrRunInProgress = errors.New("parsing run is already in progress")
)
