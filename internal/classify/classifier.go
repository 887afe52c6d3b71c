package classify

import (
	"bytes"
	"encoding/json"
	"strings"

	"bookfetch/internal/asset"
	"bookfetch/internal/ipfs"
)

// Reason explains a classification outcome.
type Reason string

const (
	ReasonAccepted          Reason = "accepted"
	ReasonInvalidAssetID    Reason = "invalid_asset_id"
	ReasonNoOnchainMetadata Reason = "no_onchain_metadata"
	ReasonNoFiles           Reason = "no_files"
	ReasonNoSource          Reason = "no_source"
	ReasonUnsupportedSource Reason = "unsupported_source"
)

// Decision is the result of classifying one metadata document.
type Decision struct {
	Reason    Reason
	Asset     asset.Validated
	Job       asset.DownloadJob
	MediaType string
	// ExtensionMatched reports whether MediaType mapped to a known extension
	// rather than falling back to DefaultExtension.
	ExtensionMatched bool
}

// Valid reports whether the asset was accepted.
func (d Decision) Valid() bool {
	return d.Reason == ReasonAccepted
}

type onchainDocument struct {
	Files json.RawMessage `json:"files"`
}

type fileDescriptor struct {
	Src       json.RawMessage `json:"src"`
	MediaType json.RawMessage `json:"mediaType"`
}

// Classifier applies the acceptance rules using a URI resolver.
type Classifier struct {
	resolver ipfs.Resolver
}

// New creates a Classifier that resolves sources through resolver.
func New(resolver ipfs.Resolver) *Classifier {
	return &Classifier{resolver: resolver}
}

// Classify inspects meta and returns the decision. It never returns an error:
// malformed documents are rejected with the most specific Reason.
func (c *Classifier) Classify(meta asset.Metadata) Decision {
	id := strings.TrimSpace(meta.Asset)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return Decision{Reason: ReasonInvalidAssetID}
	}

	var doc onchainDocument
	if !isObject(meta.Onchain) || json.Unmarshal(meta.Onchain, &doc) != nil {
		return Decision{Reason: ReasonNoOnchainMetadata}
	}

	var files []json.RawMessage
	if len(doc.Files) == 0 || json.Unmarshal(doc.Files, &files) != nil || len(files) == 0 {
		return Decision{Reason: ReasonNoFiles}
	}

	var first fileDescriptor
	if !isObject(files[0]) || json.Unmarshal(files[0], &first) != nil {
		return Decision{Reason: ReasonNoSource}
	}
	source, ok := decodeString(first.Src)
	if !ok {
		return Decision{Reason: ReasonNoSource}
	}

	url, err := c.resolver.Resolve(source)
	if err != nil {
		return Decision{Reason: ReasonUnsupportedSource}
	}

	mediaType, _ := decodeString(first.MediaType)
	ext, matched := ExtensionFor(mediaType)

	return Decision{
		Reason: ReasonAccepted,
		Asset:  asset.Validated{Asset: id, Source: source},
		Job: asset.DownloadJob{
			Asset:    id,
			URL:      url,
			Filename: id + "." + ext,
		},
		MediaType:        mediaType,
		ExtensionMatched: matched,
	}
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func decodeString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var value string
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return "", false
	}
	return value, true
}
