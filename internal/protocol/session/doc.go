// Package session owns one duochat peer-to-peer session.
//
// Ownership boundary:
// - the connection resource (Session) and its single teardown
// - identity handshake, ordered by role
// - the strictly alternating turn-taking loop
//
// Ordering contract: the Responder writes its name before reading; the
// Initiator reads before writing. Two peers that both read first block forever.
package session
