// Package idgen generates and verifies compact, structured, tamper-evident
// identifiers suitable for transaction IDs, API keys, and session tokens.
//
// An identifier is built from a core payload (random or key-derived), optional
// fixed-width metadata fragments (timestamp, counter, expiry, geo region,
// device binding, custom JSON), and optional checksum blocks inserted at a
// configurable position. Formatting (case, separators, prefix/suffix) is
// applied last and is exactly reversed by the parser.
//
// The format carries no self-describing header: parsing and verification
// require the same Config used at generation time. A config mismatch yields
// wrong results, not an error.
package idgen
