package errors

import "errors"

var (
	ErrNotFound = errors.New("tour not found")

	ErrOverlapConflict = errors.New("overlapping tour for property")

	ErrQuotaExceeded = errors.New("daily tour creation limit reached")

	ErrInvalidWindow = errors.New("end_at must be after start_at")

	ErrInvalidPage = errors.New("invalid page parameters")

	ErrInvalidSort = errors.New("unsupported sort field")
)
