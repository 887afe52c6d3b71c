// Package bookio is the client for the Book.io collection catalog.
//
// The catalog is a single unpaged listing of every collection Book.io
// publishes. Verify performs a linear membership check against it. An
// optional Cache lets repeated runs skip the request while the stored copy is
// fresh.
package bookio
