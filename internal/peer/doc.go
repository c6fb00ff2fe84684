// Package peer establishes the transport for one duochat role and drives the
// session on it.
//
// Ownership boundary:
// - listen+accept (Responder) and resolve+connect (Initiator)
// - Session creation and its single teardown on every exit path
// - handshake followed by the turn-taking loop
package peer
