package rate

import "errors"

// ErrRateLimited is returned once a counter exceeds its budget for the window.
// Redis failures are reported with the store error taxonomy instead.
var ErrRateLimited = errors.New("rate limited")
