// Package timeouts defines shared timeout constants used across services.
package timeouts

import "time"

// StorageRequest caps a single character or catalog store call.
const StorageRequest = 5 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers and telemetry exporters wait during
// graceful shutdown.
const Shutdown = 5 * time.Second
