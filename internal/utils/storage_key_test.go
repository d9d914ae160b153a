package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateStorageKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"plain", "front.jpg", nil},
		{"nested", "claims/2024/ORD-1/front.jpg", nil},
		{"dots in name", "claims/a..b.jpg", nil},
		{"empty", "", ErrStorageKeyEmpty},
		{"absolute", "/etc/passwd", ErrStorageKeyAbsolute},
		{"traversal", "claims/../../secrets", ErrStorageKeyTraversal},
		{"leading traversal", "../x.jpg", ErrStorageKeyTraversal},
		{"backslash", "claims\\x.jpg", ErrStorageKeyChars},
		{"control char", "claims/x\x00.jpg", ErrStorageKeyChars},
		{"too long", strings.Repeat("a", MaxStorageKeyLength+1), ErrStorageKeyTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStorageKey(tt.key)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateStorageKey(%q) = %v; want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}
