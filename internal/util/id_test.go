package util

import (
	"strings"
	"testing"
)

func TestNewID(t *testing.T) {
	plain := NewID("")
	if len(plain) != idBytes*2 {
		t.Fatalf("expected %d hex chars, got %q", idBytes*2, plain)
	}

	tagged := NewID("jti")
	if !strings.HasPrefix(tagged, "jti-") {
		t.Fatalf("expected a jti- prefix, got %q", tagged)
	}

	if NewID("jti") == tagged {
		t.Fatal("two ids must not collide")
	}
}
