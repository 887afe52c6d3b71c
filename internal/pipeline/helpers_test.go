package pipeline

import "bookfetch/internal/asset"

func assetValidated(id string) asset.Validated {
	return asset.Validated{Asset: id, Source: "ipfs://" + id}
}
