// Package asset holds the domain model shared by the catalog clients, the
// classifier, the download dispatcher, and the fetch pipeline.
package asset
