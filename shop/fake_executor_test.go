package shop

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/thev1ndu/xp/pkg/providers"
	"github.com/thev1ndu/xp/provider"
)

type reply struct {
	response string
	err      error
	panic    bool
}

// recordingExecutor answers commands by prefix and records every call
type recordingExecutor struct {
	mu       sync.Mutex
	replies  map[string]reply
	commands []string
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{replies: make(map[string]reply)}
}

func (e *recordingExecutor) on(prefix, response string) *recordingExecutor {
	e.replies[prefix] = reply{response: response}
	return e
}

func (e *recordingExecutor) fail(prefix string, err error) *recordingExecutor {
	e.replies[prefix] = reply{err: err}
	return e
}

func (e *recordingExecutor) panicOn(prefix string) *recordingExecutor {
	e.replies[prefix] = reply{panic: true}
	return e
}

func (e *recordingExecutor) Execute(_ context.Context, command string) (string, error) {
	e.mu.Lock()
	e.commands = append(e.commands, command)
	var matched reply
	longest := -1
	for prefix, r := range e.replies {
		if strings.HasPrefix(command, prefix) && len(prefix) > longest {
			matched, longest = r, len(prefix)
		}
	}
	e.mu.Unlock()

	if matched.panic {
		panic("executor exploded")
	}
	return matched.response, matched.err
}

func (e *recordingExecutor) calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.commands))
	copy(out, e.commands)
	return out
}

func (e *recordingExecutor) count(prefix string) int {
	n := 0
	for _, c := range e.calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type recordingAudit struct {
	mu     sync.Mutex
	events []*providers.PurchaseEvent
}

func (a *recordingAudit) PublishPurchase(_ context.Context, event *providers.PurchaseEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

type testShop struct {
	service *Service
	store   *provider.MemoryTokenStore
	audit   *recordingAudit
}

func newTestShop(executor providers.CommandExecutor) *testShop {
	catalog, err := NewCatalog(map[string]decimal.Decimal{
		"mining":  decimal.NewFromInt(2),
		"fishing": decimal.NewFromInt(2),
		"alchemy": decimal.RequireFromString("0.5"),
	})
	if err != nil {
		panic(err)
	}

	store := provider.NewMemoryTokenStore()
	audit := &recordingAudit{}
	return &testShop{
		service: NewService(Options{
			Executor: executor,
			Store:    store,
			Catalog:  catalog,
			Audit:    audit,
			Logger:   zerolog.Nop(),
		}),
		store: store,
		audit: audit,
	}
}

// withToken stores a token for username directly, bypassing registration
func (s *testShop) withToken(username, token string) *testShop {
	_ = s.store.Put(context.Background(), username, token)
	return s
}
