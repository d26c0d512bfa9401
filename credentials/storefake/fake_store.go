package storefake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/credentials"
)

var _ credentials.Store = (*FakeStore)(nil)

type Op string

const (
	OpGetAccess    Op = "get_access"
	OpSetAccess    Op = "set_access"
	OpClearAccess  Op = "clear_access"
	OpGetRefresh   Op = "get_refresh"
	OpSetRefresh   Op = "set_refresh"
	OpClearRefresh Op = "clear_refresh"
)

// FakeStore is an in-memory credential store that counts calls and can be told
// to fail individual operations.
type FakeStore struct {
	access  string
	refresh string
	calls   map[Op]int
	errs    map[Op]error
	lock    sync.RWMutex
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		calls: make(map[Op]int),
		errs:  make(map[Op]error),
	}
}

// NewFakeStoreWith returns a store pre-loaded with a signed-in pair.
func NewFakeStoreWith(pair credentials.Pair) *FakeStore {
	s := NewFakeStore()
	s.access = pair.Access
	s.refresh = pair.Refresh
	return s
}

// FailOn makes op return err until cleared with a nil err.
func (s *FakeStore) FailOn(op Op, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err == nil {
		delete(s.errs, op)
		return
	}
	s.errs[op] = err
}

func (s *FakeStore) Calls(op Op) int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.calls[op]
}

// Snapshot returns the stored pair without counting as a store call.
func (s *FakeStore) Snapshot() credentials.Pair {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return credentials.Pair{Access: s.access, Refresh: s.refresh}
}

func (s *FakeStore) GetAccess(_ context.Context) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.record(OpGetAccess); err != nil {
		return "", err
	}
	return s.access, nil
}

func (s *FakeStore) SetAccess(_ context.Context, token string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.record(OpSetAccess); err != nil {
		return err
	}
	s.access = token
	return nil
}

func (s *FakeStore) ClearAccess(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.record(OpClearAccess); err != nil {
		return err
	}
	s.access = ""
	return nil
}

func (s *FakeStore) GetRefresh(_ context.Context) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.record(OpGetRefresh); err != nil {
		return "", err
	}
	return s.refresh, nil
}

func (s *FakeStore) SetRefresh(_ context.Context, token string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.record(OpSetRefresh); err != nil {
		return err
	}
	s.refresh = token
	return nil
}

func (s *FakeStore) ClearRefresh(_ context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.record(OpClearRefresh); err != nil {
		return err
	}
	s.refresh = ""
	return nil
}

// record must be called with the write lock held.
func (s *FakeStore) record(op Op) error {
	s.calls[op]++
	return s.errs[op]
}
