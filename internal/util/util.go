package util

import (
	"crypto/sha1"
	"encoding/hex"
)

// GetIDFromString returns a stable hex id for str.
func GetIDFromString(str *string) string {
	hasher := sha1.New()
	hasher.Write([]byte(*str))

	return hex.EncodeToString(hasher.Sum(nil))
}

func Ptr[T any](v T) *T {
	return &v
}
