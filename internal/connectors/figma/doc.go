// Package figma implements the document client for the Figma REST API.
//
// # Endpoints
//
// Three read endpoints are used:
//
//   - GET /files/{key}?depth=N returns the document tree and its version
//   - GET /files/{key}/nodes?ids=...&depth=N returns subtrees by node id
//   - GET /images/{key}?ids=...&format=png&scale=2 renders nodes and returns
//     temporary download URLs
//
// Render requests are chunked to at most [domain.MaxImageBatch] ids each and
// the results merged, so callers may pass any number of ids.
//
// # Authentication
//
// Personal access tokens are sent in the X-Figma-Token header. OAuth access
// tokens are sent as bearer tokens through golang.org/x/oauth2.
//
// # Rate Limiting
//
// Requests pass through a token bucket sized by figma.requests_per_second.
// When the API answers 429 with a Retry-After header, later requests wait
// until that deadline. The request that received the 429 is not retried;
// it fails with [domain.UpstreamAPIError] and the caller decides.
//
// # Errors
//
// Every non-2xx response becomes a [*domain.UpstreamAPIError] carrying the
// requested URL, status and the API's error message when present.
package figma
