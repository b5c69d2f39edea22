// Package core holds the domain types shared by the storage, search and api
// packages: annotations, threshold rule parameters, entity store records,
// field descriptions and the status-carrying errors that handlers map to
// HTTP responses.
//
// Types here do no I/O. Validation methods return problems as values so the
// api layer can join them into a single 400 response.
package core
