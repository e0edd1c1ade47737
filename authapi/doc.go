// Package authapi is the network-shaped boundary of the session layer.
//
// [Client] is the request/response contract for the four auth endpoints.
// Three implementations exist:
//
//   - [HTTPClient] talks to a real backend over JSON/HTTP with bounded retries.
//   - [MockClient] answers from a mockstore.Store with simulated latency.
//   - [FallbackClient] tries a primary client and, on any failure, a
//     fallback. Passing a nil fallback disables the second stage without
//     touching callers.
//
// Callers never learn which stage answered.
package authapi
