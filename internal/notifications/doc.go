// Package notifications posts fetch run summaries to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers can notify unconditionally.
package notifications
