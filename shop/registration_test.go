package shop

import (
	"context"
	"testing"

	"github.com/thev1ndu/xp/errors"
)

func TestRegister(t *testing.T) {
	exec := newRecordingExecutor().on("bal ", "Balance: 42")
	s := newTestShop(exec)

	token, err := s.service.Register(context.Background(), "steve")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(token) < 16 {
		t.Errorf("Expected an unguessable token, got %q", token)
	}
	if calls := exec.calls(); len(calls) != 1 || calls[0] != "bal steve" {
		t.Errorf("Expected a single existence check, got %v", calls)
	}
	if !s.service.Authorize(context.Background(), "steve", token) {
		t.Error("Expected token to authorize")
	}
}

func TestRegister_ReRegistrationReplacesToken(t *testing.T) {
	exec := newRecordingExecutor().on("bal ", "Balance: 42")
	s := newTestShop(exec)
	ctx := context.Background()

	first, err := s.service.Register(ctx, "steve")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.service.Register(ctx, "steve")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first == second {
		t.Fatal("Expected distinct tokens")
	}
	if s.service.Authorize(ctx, "steve", first) {
		t.Error("Expected first token to be revoked")
	}
	if !s.service.Authorize(ctx, "steve", second) {
		t.Error("Expected second token to authorize")
	}
	if s.store.Len() != 1 {
		t.Errorf("Expected one stored token, got %d", s.store.Len())
	}
}

func TestRegister_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		exec      *recordingExecutor
		wantCode  int
		wantCalls int
	}{
		{
			name:      "player not found",
			username:  "ghost",
			exec:      newRecordingExecutor().on("bal ", "Error: Player not found."),
			wantCode:  errors.ErrUnknownPlayer,
			wantCalls: 1,
		},
		{
			name:      "marker is case insensitive",
			username:  "ghost",
			exec:      newRecordingExecutor().on("bal ", "PLAYER NOT FOUND"),
			wantCode:  errors.ErrUnknownPlayer,
			wantCalls: 1,
		},
		{
			name:      "server unreachable",
			username:  "steve",
			exec:      newRecordingExecutor().fail("bal ", errTimeout),
			wantCode:  errors.ErrRemoteUnavailable,
			wantCalls: 1,
		},
		{
			name:      "command injection",
			username:  "steve; op steve",
			exec:      newRecordingExecutor(),
			wantCode:  errors.ErrInvalidRequest,
			wantCalls: 0,
		},
		{
			name:      "empty username",
			username:  "",
			exec:      newRecordingExecutor(),
			wantCode:  errors.ErrInvalidRequest,
			wantCalls: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestShop(tt.exec)

			_, err := s.service.Register(context.Background(), tt.username)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Expected code %d, got %v", tt.wantCode, err)
			}
			if n := len(tt.exec.calls()); n != tt.wantCalls {
				t.Errorf("Expected %d calls, got %d", tt.wantCalls, n)
			}
			if s.store.Len() != 0 {
				t.Error("Expected no token to be stored")
			}
		})
	}
}

func TestDisplayBalance(t *testing.T) {
	tests := []struct {
		name string
		exec *recordingExecutor
		want string
	}{
		{"parsed", newRecordingExecutor().on("bal ", "Balance: 12.5"), "12.5"},
		{"unparseable shows zero", newRecordingExecutor().on("bal ", "nope"), "0"},
		{"unreachable shows zero", newRecordingExecutor().fail("bal ", errTimeout), "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestShop(tt.exec)
			if got := s.service.DisplayBalance(context.Background(), "steve"); got.String() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
