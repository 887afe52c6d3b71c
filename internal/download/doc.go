// Package download streams image files to disk under a fixed number of
// concurrent transfers.
//
// Submit blocks until one of the dispatcher's permits is free and then runs
// the job in its own goroutine; the permit is returned when the job ends,
// whatever the outcome. A job whose destination already exists completes as
// a no-op. Bodies are written to a temporary file beside the destination and
// renamed into place only after the whole body arrived. A failed job is
// logged and recorded but never stops its siblings.
package download
