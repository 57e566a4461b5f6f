// Package cmd implements the command-line interface for the quickkv
// embedded key-value store. It provides a hierarchical command structure
// with one-shot store operations and an interactive shell.
//
// The package is organized into several subpackages:
//
//   - kv: One-shot key-value operations (get, set, delete, ...) plus a
//     performance testing tool
//   - shell: Interactive read-eval-print loop against a store
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All commands operate on a local database file (or a volatile in-memory
// store with --runtime memory); configuration comes from flags or QKV_*
// environment variables.
//
// See quickkv -help for a list of all commands.
package cmd
