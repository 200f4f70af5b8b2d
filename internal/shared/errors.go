package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingAPIKey = fmt.Errorf("missing API key")

	// API and service errors
	ErrAPIRequest     = fmt.Errorf("API request failed")
	ErrNoConnector    = fmt.Errorf("no connector specified")
	ErrConnectorMatch = fmt.Errorf("no connector matches")

	// Storage errors
	ErrHistoryNotFound = fmt.Errorf("history entry not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
