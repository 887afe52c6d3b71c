// Command bookfetch downloads the cover images of a Book.io collection.
//
// Subcommands:
//   - fetch: verify a policy id, list its assets, and download their images
//   - verify: check whether a policy id is listed in the Book.io catalog
//   - collections: list the Book.io catalog
//   - check: run readiness checks against paths and services
//   - config: create or validate the configuration file
package main
