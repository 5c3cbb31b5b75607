// Package acl is the anti-corruption layer between remote quotation sources
// and the finder's domain.
//
// Remote sources publish quotations in their own shape (nested authors,
// different field names, paginated envelopes). Those DTOs stay unexported
// here; only [domain.Quotation] values and domain errors leave the package.
//
// # Components
//
//   - [RemoteSource]: a catalog source and health checker backed by a
//     paginated JSON endpoint
//   - [BaseAdapter]: embeddable client plus service name with a GET helper
//     that returns domain errors
//   - [MapHTTPError]: maps transport failures and statuses to domain errors
//   - [DecodeResponse], [TranslateSlice]: generic decode and translate helpers
//
// # Error mapping
//
//   - 404 Not Found → [domain.ErrNotFound]
//   - 409 Conflict → [domain.ErrConflict]
//   - 400/422 → [domain.ErrValidation]
//   - 401/403, 429, 5xx and transport errors → [domain.ErrUnavailable]
//
// [clients.ErrCircuitOpen] and [clients.ErrMaxRetriesExceeded] also map to
// [domain.ErrUnavailable]. Context cancellation is passed through as is.
package acl
