/*
Package server is the demo backend behind the primary auth transport.

It serves the endpoints the HTTP client calls, under /api:

	POST /api/auth/login           credentials -> {user, token}
	POST /api/auth/register        name, email, password -> {user, token}
	GET  /api/auth/me              bearer token -> user
	POST /api/auth/logout          bearer token -> 204, token denied until expiry
	POST /api/auth/reset-password  email -> {message, success}

plus GET /healthz and GET /metrics. Users live in a mockstore.Store; tokens
are JWTs signed by a jwt.Manager. Failed logins and reset requests are
throttled through Redis when a limiter is configured. Every error body is
{"message": "..."} so the client can surface it as is.
*/
package server
