// Package client contains the client-side transport towards the session backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     UserInfo, Logout and Close.
//  2. A concrete HTTP implementation (see HTTPClient) that calls
//     GET /api/core/userinfo and GET /api/auth/logout, carries the OIDC
//     session cookie or a bearer token, never follows redirects, and maps
//     HTTP status codes to sentinel errors.
//  3. A RoundTripper that stamps every request with an X-Request-Id and
//     wraps it in an OpenTelemetry client span.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrUnexpectedStatus, and
// models.ErrInvalidIdentity for payloads that do not describe a user.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation/timeouts.
package client
