// Package protocol owns the duochat wire contract shared by both peer roles.
//
// Ownership boundary:
// - sentinel errors for the framing and session layers
// - outcome classification of read/write results (ok, disconnected, io failure)
// - frame/header primitives live in protocol/frame
// - handshake and turn-taking live in protocol/session
package protocol
