// Package catalogcache persists the Book.io collection catalog in SQLite so
// repeated runs can verify a policy id without another catalog request.
//
// Only the catalog is stored; nothing about individual fetch runs is kept.
// The cache is replaced wholesale on every refresh and a stored copy older
// than the caller's max age is ignored.
package catalogcache
