// Package state holds per-chat conversation sessions.
// Sessions live only for the lifetime of the process and are never persisted.
package state
