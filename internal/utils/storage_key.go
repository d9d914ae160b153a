package utils

import (
	"errors"
	"strings"
	"unicode"
)

// MaxStorageKeyLength matches the claim_media.storage_key column
const MaxStorageKeyLength = 512

// Storage key problems
var (
	ErrStorageKeyEmpty     = errors.New("storage key is empty")
	ErrStorageKeyAbsolute  = errors.New("storage key must be relative")
	ErrStorageKeyTraversal = errors.New("storage key must not contain '..' segments")
	ErrStorageKeyChars     = errors.New("storage key contains control characters or backslashes")
	ErrStorageKeyTooLong   = errors.New("storage key is too long")
)

// ValidateStorageKey checks an object storage key such as
// "claims/2024/ORD-1/front.jpg" before it is recorded against a claim.
func ValidateStorageKey(key string) error {
	if key == "" {
		return ErrStorageKeyEmpty
	}
	if len(key) > MaxStorageKeyLength {
		return ErrStorageKeyTooLong
	}
	if strings.HasPrefix(key, "/") {
		return ErrStorageKeyAbsolute
	}
	for _, r := range key {
		if r == '\\' || !unicode.IsPrint(r) {
			return ErrStorageKeyChars
		}
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return ErrStorageKeyTraversal
		}
	}
	return nil
}
