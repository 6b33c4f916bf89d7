package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Search errors, recovered inside a single lookup
	ErrAPIRequest     = fmt.Errorf("API request failed")
	ErrSearchStatus   = fmt.Errorf("unexpected search response status")
	ErrMarkerNotFound = fmt.Errorf("ytInitialData not found")
	ErrPayloadParse   = fmt.Errorf("failed to parse search payload")
	ErrNoCandidates   = fmt.Errorf("no admissible candidates")

	// Conversion errors
	ErrConversionInProgress = fmt.Errorf("conversion already in progress")
	ErrConversionFailed     = fmt.Errorf("conversion failed")
	ErrResultNotFound       = fmt.Errorf("no stored result")
	ErrServiceUnavailable   = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
