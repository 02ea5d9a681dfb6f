// Package state keeps the per-user navigation record: the current menu name and the
// stack of menus visited before it. Backends implement Store; MemoryStore is the
// in-process reference implementation.
package state
