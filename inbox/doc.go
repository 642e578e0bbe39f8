// Copyright 2026 The Caminho Authors
// SPDX-License-Identifier: Apache-2.0

// Package inbox keeps a local copy of the portal's messaging state in
// step with the server.
//
// [Store] holds the latest fetched snapshot: the conversation list
// (admin view) or the message thread (client view), plus the unread
// counter. Fetched data enters through the reconcile methods, which
// compare the incoming snapshot structurally against the held one and
// replace it only when something actually differs. The view layer
// watches [Store.Changed] and re-renders once per real change, so
// identical polls never steal focus from an open input field.
//
// [Synchronizer] drives the store. It polls the backend on two
// cadences — the full list while the messaging view is active, the
// unread count alone otherwise — and exposes Send, Edit, and Delete.
// Mutations touch local state only after the server confirms, using
// the server's returned record, so there is nothing to roll back on
// failure. Poll failures are logged and left for the next tick;
// mutation failures are returned to the caller.
package inbox
