// Package internal holds helpers shared by authdemo packages that are not
// part of its public API.
//
// # Sub-packages
//
//   - audit: async session event dispatch (Dispatcher + Sink implementations)
//   - logging: process logger setup
//   - rate: Redis-backed fixed-window throttles for the demo backend
package internal
