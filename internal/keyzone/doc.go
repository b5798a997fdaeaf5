/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package keyzone provides a bounded container of per-identity state.
// When the zone is full, the least recently used identity is evicted and its state is forgotten.
package keyzone
