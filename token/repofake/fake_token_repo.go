package tokenfakerepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-session-client/token"
)

var (
	_ token.Store       = (*FakeTokenRepo)(nil)
	_ token.MultiSetter = (*FakeTokenRepo)(nil)
)

// FakeTokenRepo keeps the session in memory. Used in tests and when TOKEN_STORE=memory.
type FakeTokenRepo struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		values: make(map[string]string),
	}
}

func (tr *FakeTokenRepo) Get(_ context.Context, key string) (string, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	v, ok := tr.values[key]
	if !ok {
		return "", token.ErrNotFound
	}
	return v, nil
}

func (tr *FakeTokenRepo) Set(_ context.Context, key, value string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	tr.values[key] = value
	return nil
}

func (tr *FakeTokenRepo) SetAll(_ context.Context, values map[string]string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	for k, v := range values {
		tr.values[k] = v
	}
	return nil
}

func (tr *FakeTokenRepo) RemoveAll(_ context.Context, keys ...string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	for _, k := range keys {
		delete(tr.values, k)
	}
	return nil
}

// Len is the number of stored keys
func (tr *FakeTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.values)
}
