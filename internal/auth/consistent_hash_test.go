package auth

import (
	"fmt"
	"testing"
)

func TestGetNodeStable(t *testing.T) {
	ring := NewConsistentHashRing([]string{"n1", "n2", "n3"}, 50)
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("token-%d", i)
		if ring.GetNode(key) != ring.GetNode(key) {
			t.Fatalf("node for %q is not stable", key)
		}
	}
}

func TestEmptyNodesGetFallback(t *testing.T) {
	ring := NewConsistentHashRing(nil, 0)
	if ring.GetNode("anything") == "" {
		t.Fatal("ring with fallback node must always resolve")
	}
}

func TestAddIsIdempotent(t *testing.T) {
	ring := NewConsistentHashRing([]string{"n1"}, 10)
	before := ring.GetNode("some-key")
	ring.Add("n1")
	if got := ring.GetNode("some-key"); got != before {
		t.Fatalf("re-adding an existing node changed mapping: %q -> %q", before, got)
	}
}
