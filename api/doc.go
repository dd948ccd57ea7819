// Copyright 2026 The Visamark Authors
// SPDX-License-Identifier: Apache-2.0

// Package api wraps the Visamark platform's HTTP+JSON API.
//
// The package provides two core types. [Client] is an unauthenticated
// client that handles login and registration, returning authenticated
// [Session] values. Client holds the API base URL and HTTP transport,
// shared across all Sessions derived from it.
//
// [Session] wraps a Client with the identity and credential pair for
// authenticated operations: identity verification (WhoAmI), assessment
// (question retrieval, submission, result retrieval), profile management
// (section updates, family members, document upload), application
// listing, and account settings.
//
// Every authenticated request passes through a single chokepoint that
// attaches the access credential as a bearer header. A request that
// fails with 401 triggers at most one credential refresh followed by
// exactly one retry of the original request. Concurrent 401s are
// de-duplicated behind a single refresh call: whichever request acquires
// the refresh lock first performs the refresh, and the rest observe the
// already-swapped credentials and retry directly. If the refresh itself
// fails, the Session is invalidated (identity and both credentials
// cleared) and the failure propagates to the caller.
//
// All API errors are returned as [*Error] carrying the HTTP status code
// and the server-provided message. The platform wraps every response in
// a {success, message, data} envelope; the envelope is decoded at this
// boundary so callers only ever see the normalized payload types.
package api
