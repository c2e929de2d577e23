// Package driving defines the interfaces the outside world calls INTO core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The HTTP API, the MCP server and the CLI all talk to core exclusively
// through these interfaces.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driving
