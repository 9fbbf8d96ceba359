package utils

import (
	"crypto/md5"
	"fmt"
)

// HashString returns a stable hex digest used for cache keys and
// document identifiers derived from URLs.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// HashStrings digests several values into one key, keeping the
// separator out of band so "a","bc" and "ab","c" stay distinct.
func HashStrings(inputs ...string) string {
	h := md5.New()
	for _, in := range inputs {
		h.Write([]byte(in))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
