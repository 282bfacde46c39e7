// Package ports defines the boundary interfaces of the invocation pipeline.
// The core depends only on these contracts; adapters (memory container,
// redis replay cache, HTTP transport) implement them.
package ports
