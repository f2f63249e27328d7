// Package server implements the HTTP gateway for the hubhook webhook receiver.
//
// This package provides:
//   - The GET verification handshake (hub.mode / hub.verify_token / hub.challenge)
//   - Event ingestion for signed POST notifications, one route per channel
//   - A JSON dump of the event log at "/" for inspection
//   - Health and Prometheus metrics endpoints
//   - Structured logging of all HTTP requests
//
// The server integrates with other packages:
//   - internal/channel: the set of enabled channels and their paths
//   - internal/eventlog: the event log store (memory, JSON file or SQLite)
//   - internal/metrics: Prometheus collectors
//
// Security features:
//   - HMAC-SHA1 (X-Hub-Signature) and HMAC-SHA256 (X-Hub-Signature-256)
//     verification over the raw request body, compared in constant time
//   - Signature enforcement on by default and fail-closed without a secret
//   - Payload size limit (2 MiB)
//   - Failure responses carry the status only, never payload details
package server
