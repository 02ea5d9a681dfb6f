// Package navigator drives per-user navigation over a menu registry.
//
// Manager.Select is the transition function: it resolves the user's current menu,
// lets the menu react to an action and applies the resulting messages, go-backs and
// menu switches in order. The whole read-modify-write runs under the store's per-user
// lock so concurrent updates for one user never interleave.
package navigator
