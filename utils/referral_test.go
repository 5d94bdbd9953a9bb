package utils

import (
	"strings"
	"testing"
)

func isUpperAlphanumeric(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func TestGenerateAffiliateCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateAffiliateCode()
		if err != nil {
			t.Fatalf("GenerateAffiliateCode: %v", err)
		}
		if len(code) != 8 {
			t.Fatalf("code %q has length %d, want 8", code, len(code))
		}
		if !isUpperAlphanumeric(code) {
			t.Fatalf("code %q contains invalid characters", code)
		}
		seen[code] = true
	}
	if len(seen) < 95 {
		t.Errorf("got %d distinct codes out of 100, generator looks degenerate", len(seen))
	}
}

func TestGenerateMasterCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateMasterCode()
		if err != nil {
			t.Fatalf("GenerateMasterCode: %v", err)
		}
		if !strings.HasPrefix(code, MasterCodePrefix) {
			t.Fatalf("code %q missing %s prefix", code, MasterCodePrefix)
		}
		if len(code) != len(MasterCodePrefix)+6 {
			t.Fatalf("code %q has length %d, want %d", code, len(code), len(MasterCodePrefix)+6)
		}
		if !isUpperAlphanumeric(code) {
			t.Fatalf("code %q contains invalid characters", code)
		}
	}
}

func TestRandomAlphanumericLengths(t *testing.T) {
	for _, n := range []int{1, 6, 8, 16, 32} {
		s, err := randomAlphanumeric(n)
		if err != nil {
			t.Fatalf("randomAlphanumeric(%d): %v", n, err)
		}
		if len(s) != n {
			t.Errorf("randomAlphanumeric(%d) returned length %d", n, len(s))
		}
	}
}
