// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

/*
Package auth resolves the identity behind an API request.

The identity provider itself is external. Clients present the bearer token
it issued, and this package verifies it locally with a shared HS256 secret.
The verified subject owns the caller's liked events and is the user ID
attached to activity tracking.

Modes:

  - none: every request runs as the anonymous subject.
  - jwt: a valid token is required; it is read from the Authorization
    header, the "token" cookie, or the access_token query parameter (the
    last one for browser websocket upgrades, which cannot set headers).

Handlers read the caller with SubjectFromContext.
*/
package auth
