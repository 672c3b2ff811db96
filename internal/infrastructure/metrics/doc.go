// Package metrics exposes expvar-published counters used by the link graph
// subsystem (store mutations, validation failures, and session reconciles).
// It intentionally avoids external dependencies and is consumed by the
// optional linkgraph-server for the /debug/vars endpoint.
package metrics
