// ABOUTME: Package documentation for the stateless HTTP API
// ABOUTME: Describes the route surface and the per-request authorization rule

// Package api serves the stateless access mode over HTTP JSON.
//
// Two classes of route exist. Token-bearing routes (/v1/logout, /v1/me,
// /v1/contexts) need a valid bearer token and operate on the caller's own
// resources. Context-guarded routes (/v1/messages) additionally require the
// X-Tame-Context header and pass through auth.Middleware, which re-runs the
// full (token, context) authorization on every single request. Nothing on
// the server remembers a prior grant.
//
// /v1/login is rate limited per client IP. /healthz and the metrics
// endpoint are open.
package api
