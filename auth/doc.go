// Package auth establishes the identity of the mobile user behind an AI
// request.
//
// The transport layer verifies the client's bearer token with a
// TokenVerifier and attaches the resulting Identity to the request context.
// Downstream, the dispatcher reads the user ID from the context to stamp
// history records; requests without an identity are processed anonymously.
package auth
