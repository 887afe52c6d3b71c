package asset

import (
	"encoding/json"
	"fmt"
)

// ID is the opaque on-chain asset handle (policy id + hex asset name).
type ID = string

// Metadata is the raw metadata document returned for one asset. Onchain is
// left undecoded so the classifier owns the single parse.
type Metadata struct {
	Asset       ID              `json:"asset"`
	PolicyID    string          `json:"policy_id"`
	Fingerprint string          `json:"fingerprint"`
	Onchain     json.RawMessage `json:"onchain_metadata"`
}

// Validated is an asset whose metadata carries a resolvable image source.
type Validated struct {
	Asset  ID     `json:"asset"`
	Source string `json:"src"`
}

// DownloadJob is the transfer derived from a Validated asset.
type DownloadJob struct {
	Asset    ID
	URL      string
	Filename string
}

func (j DownloadJob) String() string {
	return fmt.Sprintf("%s -> %s", j.URL, j.Filename)
}
