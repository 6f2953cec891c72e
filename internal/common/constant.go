// Package common contains shared constants, sentinel errors and small
// helpers used across postplanner components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// ChangeChannel is the PostgreSQL NOTIFY channel carrying schedule changes.
const ChangeChannel = "schedule_changes"
