// Package httpapi exposes the project library and export pipeline over a
// local HTTP surface. It is meant for same-host tooling: the default bind
// is loopback and there is no authentication.
package httpapi
