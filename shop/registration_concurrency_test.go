package shop

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/thev1ndu/xp/db/redis"
	"github.com/thev1ndu/xp/errors"
	"github.com/thev1ndu/xp/pkg/providers"
	"github.com/thev1ndu/xp/provider"
)

var tokenStores = []struct {
	name string
	new  func(t *testing.T) providers.TokenStore
}{
	{"memory", func(t *testing.T) providers.TokenStore {
		return provider.NewMemoryTokenStore()
	}},
	{"redis", func(t *testing.T) providers.TokenStore {
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return provider.NewRedisTokenStore(redis.NewFromClient(client), "xpshop:token:", zerolog.Nop())
	}},
}

func newServiceWithStore(t *testing.T, store providers.TokenStore) *Service {
	t.Helper()
	catalog, err := NewCatalog(map[string]decimal.Decimal{"mining": decimal.NewFromInt(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewService(Options{
		Executor: newRecordingExecutor().on("bal ", "Balance: 42"),
		Store:    store,
		Catalog:  catalog,
		Logger:   zerolog.Nop(),
	})
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	const registrations = 8

	for _, st := range tokenStores {
		t.Run(st.name, func(t *testing.T) {
			ctx := context.Background()
			store := st.new(t)
			service := newServiceWithStore(t, store)

			var (
				wg     sync.WaitGroup
				mu     sync.Mutex
				issued []string
				done   = make(chan struct{})
			)

			// Readers authorize while tokens are being replaced
			var readers sync.WaitGroup
			for i := 0; i < 4; i++ {
				readers.Add(1)
				go func() {
					defer readers.Done()
					for {
						select {
						case <-done:
							return
						default:
						}
						if service.Authorize(ctx, "steve", "not-a-token") {
							t.Error("Expected unknown token to be rejected")
							return
						}
						if current, ok, _ := store.Get(ctx, "steve"); ok && !service.Authorize(ctx, "steve", current) {
							// a newer token may have replaced it in between; recheck against the store
							if latest, _, _ := store.Get(ctx, "steve"); latest == current {
								t.Error("Expected the stored token to authorize")
								return
							}
						}
					}
				}()
			}

			for i := 0; i < registrations; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					token, err := service.Register(ctx, "steve")
					if err != nil {
						// losing every compare-and-swap round is the only acceptable failure
						if !errors.Is(err, errors.ErrInternalServerError) {
							t.Errorf("unexpected error: %v", err)
						}
						return
					}
					mu.Lock()
					issued = append(issued, token)
					mu.Unlock()
				}()
			}
			wg.Wait()
			close(done)
			readers.Wait()

			if len(issued) == 0 {
				t.Fatal("Expected at least one registration to succeed")
			}

			stored, ok, err := store.Get(ctx, "steve")
			if err != nil || !ok {
				t.Fatalf("Expected a stored token, got ok=%v err=%v", ok, err)
			}

			authorized := 0
			for _, token := range issued {
				if service.Authorize(ctx, "steve", token) {
					authorized++
					if token != stored {
						t.Errorf("Expected only the stored token to authorize")
					}
				}
			}
			if authorized != 1 {
				t.Errorf("Expected exactly one issued token to authorize, got %d of %d", authorized, len(issued))
			}
		})
	}
}

// racingStore replaces the stored token just before the next compare-and-swap,
// as a concurrent registration would
type racingStore struct {
	providers.TokenStore
	mu     sync.Mutex
	races  int
	swaps  int
	rivals []string
}

func (s *racingStore) CompareAndSwap(ctx context.Context, username, old, new string) (bool, error) {
	s.mu.Lock()
	s.swaps++
	if s.races > 0 {
		s.races--
		rival, err := newToken()
		if err != nil {
			s.mu.Unlock()
			return false, err
		}
		s.rivals = append(s.rivals, rival)
		if err := s.TokenStore.Put(ctx, username, rival); err != nil {
			s.mu.Unlock()
			return false, err
		}
	}
	s.mu.Unlock()
	return s.TokenStore.CompareAndSwap(ctx, username, old, new)
}

func TestRegister_RetriesLostSwap(t *testing.T) {
	for _, st := range tokenStores {
		t.Run(st.name, func(t *testing.T) {
			ctx := context.Background()
			store := &racingStore{TokenStore: st.new(t), races: 2}
			service := newServiceWithStore(t, store)

			token, err := service.Register(ctx, "steve")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store.swaps != 3 {
				t.Errorf("Expected 3 compare-and-swap attempts, got %d", store.swaps)
			}
			if !service.Authorize(ctx, "steve", token) {
				t.Error("Expected registered token to authorize")
			}
			for _, rival := range store.rivals {
				if service.Authorize(ctx, "steve", rival) {
					t.Error("Expected replaced token to be rejected")
				}
			}
		})
	}
}

func TestRegister_GivesUpAfterRepeatedLostSwaps(t *testing.T) {
	for _, st := range tokenStores {
		t.Run(st.name, func(t *testing.T) {
			ctx := context.Background()
			store := &racingStore{TokenStore: st.new(t), races: maxStoreAttempts}
			service := newServiceWithStore(t, store)

			_, err := service.Register(ctx, "steve")
			if !errors.Is(err, errors.ErrInternalServerError) {
				t.Fatalf("Expected internal error, got %v", err)
			}
			if store.swaps != maxStoreAttempts {
				t.Errorf("Expected %d compare-and-swap attempts, got %d", maxStoreAttempts, store.swaps)
			}

			// the last concurrent writer wins
			last := store.rivals[len(store.rivals)-1]
			if !service.Authorize(ctx, "steve", last) {
				t.Error("Expected the last rival token to authorize")
			}
		})
	}
}
