// Package exerciselinks provides a minimal public façade for managing
// exercise links without importing internal packages. It re-exports the core
// link types for convenience and exposes a Session with simple methods to
// register exercises, create and remove links, and rank alternative
// suggestions.
package exerciselinks
