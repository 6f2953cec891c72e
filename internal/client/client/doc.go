// Package client is the CLI side of the postplanner.v1.Scheduler service.
//
// GRPCClient manages the connection, injects the access token into every
// call, transparently refreshes an expired access token once per call and
// maps gRPC status codes to the sentinel errors of this package. It
// implements schedule.RecordStore and schedule.WorkspaceStore, so a
// schedule.View can run directly on top of it.
//
// InitDatabase opens the local SQLite database and applies the embedded
// goose migrations; NewRepositories wires the repositories over it.
package client
