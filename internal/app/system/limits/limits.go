// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxFormSize is the maximum size for settings and send form submissions.
	// It must hold MaxMemberIDs hex ids.
	MaxFormSize = 256 << 10 // 256 KB

	// MaxMemberIDs caps how many recipients one SMS send may name.
	MaxMemberIDs = 5000
)
