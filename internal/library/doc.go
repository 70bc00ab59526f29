// Package library stores project documents and export history in a
// SQLite database under the configured library directory. Projects are
// kept as JSON documents with a few extracted columns for listing;
// export runs form an append-only history per project.
package library
