// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

/*
Package websocket pushes dashboard session updates to browsers.

Each connected Client subscribes to one topic, the ID of the dashboard
session it renders. The Hub owns the client set and routes every published
Message to the clients of its topic only.

Outbound message types:

  - state: the session's FilterState after every change
  - panel: one endpoint's FetchResult transition
  - summary: derived chart data after a panel succeeds
  - viewport.fit: the map should fit these bounds (toolbar bbox edits)
  - session.closed: the session ended; the client should reconnect
  - pong: reply to a client ping

Inbound messages other than ping are handed to the client's Handler, which
is how the browser reports map move-end events over the same socket.

The hub runs under the supervisor via RunWithContext. On shutdown every
client's send channel is closed, which makes its write pump send a close
frame.
*/
package websocket
