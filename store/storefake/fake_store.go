package storefake

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/member-portal/store"
)

var _ store.Store = (*FakeStore)(nil)

// ErrInjected is returned by a FakeStore configured to fail.
var ErrInjected = errors.New("injected store failure")

// FakeStore is an in-memory store used by tests and the "memory" store driver.
type FakeStore struct {
	values   map[string]string
	failSet  map[string]bool // keys whose Set fails
	failAll  bool
	setCalls int
	lock     sync.RWMutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		values:  make(map[string]string),
		failSet: make(map[string]bool),
	}
}

func (fs *FakeStore) Get(_ context.Context, key string) (string, bool, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	if fs.failAll {
		return "", false, ErrInjected
	}
	v, ok := fs.values[key]
	return v, ok, nil
}

func (fs *FakeStore) Set(_ context.Context, key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	fs.setCalls++
	if fs.failAll || fs.failSet[key] {
		return ErrInjected
	}
	fs.values[key] = value
	return nil
}

func (fs *FakeStore) Remove(_ context.Context, key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.failAll {
		return ErrInjected
	}
	delete(fs.values, key)
	return nil
}

func (fs *FakeStore) Clear(_ context.Context, keys ...string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.failAll {
		return ErrInjected
	}
	for _, k := range keys {
		delete(fs.values, k)
	}
	return nil
}

// FailSet makes every Set for key fail until reset with FailSet(key, false).
func (fs *FakeStore) FailSet(key string, fail bool) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.failSet[key] = fail
}

// FailAll makes every operation fail.
func (fs *FakeStore) FailAll(fail bool) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.failAll = fail
}

// Snapshot returns a copy of the stored values.
func (fs *FakeStore) Snapshot() map[string]string {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	out := make(map[string]string, len(fs.values))
	for k, v := range fs.values {
		out[k] = v
	}
	return out
}

// SetCalls returns how many times Set has been called.
func (fs *FakeStore) SetCalls() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.setCalls
}
