// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

// Package portalapi wraps the Caminho portal's REST backend.
//
// The package provides two core types. [Client] is the unauthenticated
// entry point: it holds the base URL, HTTP transport, token store, and
// auth-failure hook, and handles login, registration, and the public
// contact endpoint. [Session] wraps a Client after authentication and
// exposes everything else: dashboard, application record, documents,
// messaging, lessons, payments, and the admin surface.
//
// Every authenticated request carries a bearer token read from the
// injected [TokenStore]. A 401 from any endpoint clears the store and
// invokes the client's OnAuthFailure hook before the error is returned
// to the caller — the forced-logout side effect is process-wide by
// design, not scoped to the failing call. All other transport and API
// errors propagate unchanged.
//
// Backend errors are returned as [*APIError] carrying the HTTP status,
// the server message, and any field-level validation errors. Callers
// classify with errors.As or the [IsAuthError] / [IsValidationError]
// helpers. There is no retry, backoff, or timeout policy beyond the
// transport default; bound calls with a context instead.
package portalapi
