// Package sqlite persists conversation sessions in a SQLite database.
//
// It uses modernc.org/sqlite, a pure Go driver, so the binary builds
// without CGO. The schema lives in versioned migrations under
// migrations/ and is applied on open.
//
// The database defaults to <data_dir>/sessions.db and is opened in WAL
// mode so HTTP handlers can read and write concurrently.
package sqlite
