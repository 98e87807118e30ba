// Package server implements the BookSwap HTTP API surface and its store.
//
// Owns:
//   - HTTP routing, handlers, and request/response contracts
//   - Admin token check (X-Admin-Token) gating admin-only mutations
//   - The swap-request state machine and the ownership-transfer protocol
//
// Does not own:
//   - Wire request types and configuration (internal/shared)
//   - The static UI (served as plain files)
//
// Invariants:
//   - books.available is true exactly when owner_id is NULL
//   - an accepted or rejected swap request never changes again
//   - multi-record mutations (accept's dual exchange, user-delete cascade)
//     commit atomically or not at all
//
// Known gap, preserved on purpose: accepting a swap request is open to any
// caller holding the request id, not just the recipient.
package server
