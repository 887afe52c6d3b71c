// Package preflight provides readiness checks for the filesystem paths and
// external services bookfetch depends on.
//
// These checks run in two contexts:
//   - The fetch command calls RunLocal before contacting any service. If a
//     check fails, the run stops with a configuration error.
//   - The "bookfetch check" command calls RunAll, which adds network reachability checks
//     against Blockfrost and the Book.io catalog, and renders the results.
package preflight
