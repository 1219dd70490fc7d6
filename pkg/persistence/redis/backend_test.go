package redis

import (
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/agentsched/agentq/pkg/persistence"
	"github.com/agentsched/agentq/pkg/persistence/persistencetest"
)

func newTestBackend(t *testing.T) persistence.Backend {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg, err := json.Marshal(Config{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	b, err := NewBackend(persistence.BackendConfig{Config: cfg, DequeueInspectLimit: 32})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestRedisBackendContract(t *testing.T) {
	persistencetest.Run(t, newTestBackend)
}

func TestQueueMemberEncoding(t *testing.T) {
	cases := []struct {
		name   string
		aPrio  int
		aSeq   int64
		bPrio  int
		bSeq   int64
		aFirst bool
	}{
		{"higher priority wins", 9, 2, 1, 1, true},
		{"earlier arrival wins on tie", 5, 1, 5, 2, true},
		{"negative priority sorts last", 0, 1, -3, 2, true},
		{"large priorities keep order", 1_000_000, 2, 999_999, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := encodeMember(tc.aPrio, tc.aSeq, "a")
			b := encodeMember(tc.bPrio, tc.bSeq, "b")
			if (a < b) != tc.aFirst {
				t.Fatalf("encodeMember order: %q vs %q, want a first = %v", a, b, tc.aFirst)
			}
		})
	}
}

func TestMemberIDRoundTrip(t *testing.T) {
	member := encodeMember(7, 42, "task:with:colons")
	if got := memberID(member); got != "task:with:colons" {
		t.Fatalf("memberID: got %q", got)
	}
	if got := memberID("garbage"); got != "" {
		t.Fatalf("memberID on malformed member: got %q, want empty", got)
	}
}
