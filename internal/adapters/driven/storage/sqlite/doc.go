// Package sqlite keeps uploaded knowledge documents and ingestion run
// summaries in ~/.merkuze/data/merkuze.db, using the cgo-free
// modernc.org/sqlite driver.
//
// Vectors live in the vectorstore adapters, not here. The schema comes from
// the numbered files in migrations/, applied on open. The database runs in
// WAL mode with a busy timeout, so the CLI, the HTTP server and the MCP
// server can share one file.
package sqlite
