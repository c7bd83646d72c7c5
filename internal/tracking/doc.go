// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

/*
Package tracking records user activity and preferences on a best-effort basis.

Calls never block the caller and never fail: records are pushed onto a
bounded queue and dropped (with a metric) when it is full. A single worker,
run by the supervisor through Serve, hands each record to every configured
sink. Sink failures are logged and swallowed.

Sinks:

  - HTTPSink posts JSON to {base}/activity and {base}/preferences.
  - NATSSink publishes activities on <subject>.<activityType> and
    preferences on <subject>.preferences.

Anonymous users are not tracked.
*/
package tracking
