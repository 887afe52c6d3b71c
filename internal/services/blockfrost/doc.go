// Package blockfrost is a minimal Blockfrost API client covering the two
// calls bookfetch needs: listing the assets minted under a policy and reading
// one asset's metadata.
//
// Requests carry the project_id header and pass through a client-side token
// bucket so a large collection does not trip the server-side rate limit.
// Non-200 responses are mapped onto the services error taxonomy.
package blockfrost
