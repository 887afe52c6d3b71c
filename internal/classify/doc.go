// Package classify decides whether an asset's on-chain metadata carries a
// downloadable image and, if so, which URL to fetch and which filename to
// write.
//
// The metadata document is decoded once into a closed schema covering the
// only shape that is accepted:
//
//	{"files": [{"src": "ipfs://<cid>", "mediaType": "image/png"}, ...]}
//
// Only the first file descriptor is inspected. Every rejection carries a
// Reason; a rejection is a normal outcome, not an error.
package classify
