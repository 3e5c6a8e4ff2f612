// Package constants provides shared constants used throughout the fleetbridge
// codebase. This includes timeouts, limits, file permissions, and the time
// layouts the target platform and the operator-facing views expect.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for collector HTTP requests
	DefaultHTTPTimeout = 30 * time.Second

	// DispatchHTTPTimeout is the timeout for create/update calls against the
	// target platform, which is slower than its read endpoints
	DispatchHTTPTimeout = 45 * time.Second

	// LoginHTTPTimeout is the timeout for the target platform login call
	LoginHTTPTimeout = 20 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// SyncTimeout is the timeout for a full collection+dispatch cycle
	SyncTimeout = 30 * time.Minute
)

// Dispatch pacing constants. The target platform enforces a low single-digit
// requests/second ceiling, so items are sent one at a time with a fixed gap.
const (
	// InterRequestDelay is the pause between consecutive dispatch calls
	InterRequestDelay = 280 * time.Millisecond

	// AuthRetryDelay is the pause before retrying an item after a token refresh
	AuthRetryDelay = 200 * time.Millisecond

	// MaxAuthAttempts bounds attempts for an item that keeps answering 401
	MaxAuthAttempts = 3

	// MaxRateAttempts bounds attempts for an item that keeps answering 403
	MaxRateAttempts = 6

	// RateBackoffStep is the linear backoff increment applied per 403 attempt
	RateBackoffStep = 1 * time.Second

	// MaxRateBackoff caps the 403 backoff delay
	MaxRateBackoff = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like the token cache (rw-------)
	SecureFilePermissions = 0600
)

// Pagination constants for the collector loops
const (
	// DefaultPageSize is the page size requested from both platforms
	DefaultPageSize = 100

	// MaxPages is a safety bound on pagination loops
	MaxPages = 1000
)

// Time layouts. The target platform and the operator views use Brazilian
// day-first formats in the America/Sao_Paulo zone.
const (
	// MetaTimeLayout is used for fetchedAt/generatedAt snapshot metadata
	MetaTimeLayout = "02/01/2006 15:04:05"

	// SpecTimeLayout is used for timestamps inside specification rows
	SpecTimeLayout = "15:04 02/01/2006"

	// TokenExpiryLayout is the expiration format of the target login response
	TokenExpiryLayout = "2006-01-02 15:04:05"

	// LocalZone is the IANA zone all display timestamps are rendered in
	LocalZone = "America/Sao_Paulo"
)

// Location returns the display time zone, falling back to a fixed UTC-3
// offset when the zone database is unavailable.
func Location() *time.Location {
	loc, err := time.LoadLocation(LocalZone)
	if err != nil {
		return time.FixedZone("-03", -3*60*60)
	}
	return loc
}
