package store

import "context"

// Store is a durable key/value store for persisted session state. It plays the role
// browser local storage plays for a web client: values survive a restart and are
// scoped to one origin.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, visible to every later Get on the same store
	Set(ctx context.Context, key, value string) error

	// Remove deletes key; removing an absent key is not an error
	Remove(ctx context.Context, key string) error

	// Clear removes all the given keys as one operation
	Clear(ctx context.Context, keys ...string) error
}
