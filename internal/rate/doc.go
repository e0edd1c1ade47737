// Package rate implements the Redis fixed-window counters that throttle
// the demo backend's login and password-reset endpoints.
//
// Counters use INCR plus EXPIRE on the first hit of a window. Keys:
//   - rl:login:<email>  failed logins per account
//   - rl:ip:<ip>        failed logins per client address
//   - rl:reset:<email>  reset requests per account
package rate
