// Package cli provides the postplanner command-line client.
//
// Every invocation loads configuration, opens the local state database,
// dials the server and restores the persisted session before running one
// command. Typical flow:
//
//	postplanner register / login
//	postplanner workspace create "Main channel"
//	postplanner connect --workspace "Main channel"
//	postplanner upload clip.mp4 --title Launch --date 2026-01-02 --time 18:30 --youtube
//	postplanner upcoming --watch
//	postplanner delete <id>
//
// Schedules are rendered grouped by calendar day. Watch mode keeps the
// listing live until interrupted.
package cli
