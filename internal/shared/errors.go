package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrOutputDir     = fmt.Errorf("output directory unusable")

	// Catalog errors
	ErrAPIRequest    = fmt.Errorf("API request failed")
	ErrTrackNotFound = fmt.Errorf("track not found")
	ErrTimeout       = fmt.Errorf("operation timed out")

	// Pipeline errors
	ErrSearchFailed     = fmt.Errorf("search failed")
	ErrResolutionFailed = fmt.Errorf("resolution failed")
	ErrFetchFailed      = fmt.Errorf("network/auth error")
	ErrNoLyrics         = fmt.Errorf("no lyrics available")
	ErrFileExists       = fmt.Errorf("file already exists")

	// History errors
	ErrRunNotFound = fmt.Errorf("run not found")

	// Input validation errors
	ErrNoEntries       = fmt.Errorf("no valid entries found")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
