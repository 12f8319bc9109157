package cache

import "crypto/sha1"

// hashText derives a fixed-size cache key from arbitrary chunk text so keys
// stay bounded regardless of chunk size.
func hashText(text string) [20]byte {
	return sha1.Sum([]byte(text))
}
