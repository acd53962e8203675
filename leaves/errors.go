package leaves

import "errors"

var (
	ErrInvalidVariant  = errors.New("leaves: variant index out of range")
	ErrInvalidSegments = errors.New("leaves: segments must be >= 1")
	ErrInvalidCount    = errors.New("leaves: instance count must be > 0")
	ErrInvalidRadius   = errors.New("leaves: radius must be > 0")
	ErrNilMode         = errors.New("leaves: bounds mode is nil")
	ErrInvalidCamera   = errors.New("leaves: camera transform is not invertible")
)
