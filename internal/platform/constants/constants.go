// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Sessions: cookie and key-value naming.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "platewise-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Uploads carry several photos, so this is longer than a plain JSON API needs.
	DefaultReadTimeout = 30 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 90 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	// It must exceed the detector timeout.
	GlobalRequestTimeout = 75 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 20.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 40

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Sessions

const (
	// DefaultSessionCookieName is the cookie carrying the opaque session token.
	DefaultSessionCookieName = "sid"

	// SessionCookiePath scopes the session cookie to the whole site.
	SessionCookiePath = "/"

	// SessionTokenBytes is the entropy of a session token before encoding.
	SessionTokenBytes = 32

	// SessionJanitorInterval is how often expired in-process sessions are purged.
	SessionJanitorInterval = 5 * time.Minute
)

// # Credentials

const (
	// BcryptCost is the fixed work factor for password hashes.
	BcryptCost = 10

	// MaxPasswordBytes is the longest password bcrypt will hash without truncation.
	MaxPasswordBytes = 72

	// MaxUsernameLength bounds usernames in characters.
	MaxUsernameLength = 64
)

// # Detector

const (
	// DetectorIssuer is the 'iss' claim of service tokens sent to the detector.
	DetectorIssuer = "platewise.api"

	// DetectorAudience is the 'aud' claim of service tokens sent to the detector.
	DetectorAudience = "platewise.detector"

	// DetectorTokenTTL is the lifetime of a single detector service token.
	DetectorTokenTTL = 2 * time.Minute

	// DetectorErrorBodyLimit caps how much of a failed detector response is read.
	DetectorErrorBodyLimit = 64 << 10

	// MultipartMemoryBytes is how much of an upload is buffered in memory
	// before the remaining parts spill to temporary files.
	MultipartMemoryBytes = 8 << 20
)

// # Object Storage

const (
	// ArchiveKeyPrefix is the top-level folder of archived meal images.
	ArchiveKeyPrefix = "uploads"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderRetryAfter    = "Retry-After"
)

// # JSON Field Identifiers

const (
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixSession = "auth:session:"
)
