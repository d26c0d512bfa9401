package credentials

import "context"

// KV is a string key/value backend such as a keychain or an encrypted file.
// Get reports ok=false for a missing key. Delete of a missing key is not an error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// KeyedStore adapts a KV backend to Store using the fixed key names.
type KeyedStore struct {
	kv KV
}

var _ Store = (*KeyedStore)(nil)

func NewKeyedStore(kv KV) *KeyedStore {
	return &KeyedStore{kv: kv}
}

func (s *KeyedStore) GetAccess(ctx context.Context) (string, error) {
	return s.get(ctx, KeyAccess)
}

func (s *KeyedStore) SetAccess(ctx context.Context, token string) error {
	return s.kv.Set(ctx, KeyAccess, token)
}

func (s *KeyedStore) ClearAccess(ctx context.Context) error {
	return s.kv.Delete(ctx, KeyAccess)
}

func (s *KeyedStore) GetRefresh(ctx context.Context) (string, error) {
	return s.get(ctx, KeyRefresh)
}

func (s *KeyedStore) SetRefresh(ctx context.Context, token string) error {
	return s.kv.Set(ctx, KeyRefresh, token)
}

func (s *KeyedStore) ClearRefresh(ctx context.Context) error {
	return s.kv.Delete(ctx, KeyRefresh)
}

func (s *KeyedStore) get(ctx context.Context, key string) (string, error) {
	v, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}
