// Package services defines shared utilities consumed by the fetch pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run ids, policy ids, and asset ids for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     (configuration, not found, transient) and map fatal ones to exit codes.
//
// Subpackages hold the HTTP clients for the Book.io catalog and the
// Blockfrost API.
package services
