package redisstore

import "strings"

// schemePrefixes are the URL prefixes recognized and stripped by the key
// codec.
var schemePrefixes = []string{"redis://", "rediss://", "ds://"}

// BuildStorageKey translates a logical key into the key stored in redis.
// The path tail, everything from the first / after any scheme and
// host:port preamble, is wrapped in braces so that redis hashes only that
// span when assigning the key to a cluster slot. Auxiliary keys derived
// from the same path, such as the staging keys written by the spark
// integration, embed the same braced span and land on the same slot.
//
// With prefixOnly the closing brace is left off. The result is then not
// a valid storage key but the base for a wildcard match pattern.
func BuildStorageKey(key string, prefixOnly bool) string {
	start := 0
	for _, prefix := range schemePrefixes {
		if strings.HasPrefix(key, prefix) {
			start = len(prefix)
			break
		}
	}
	// everything before the first slash is host:port preamble
	if i := strings.Index(key[start:], "/"); i >= 0 {
		start += i
	}
	k := "{" + key[start:]
	if !prefixOnly {
		k += "}"
	}
	return k
}

// BuildLogicalKey recovers the path tail from a storage key produced by
// BuildStorageKey. The input must be a terminated storage key; anything
// else yields an undefined result.
func BuildLogicalKey(storageKey string) string {
	k := strings.TrimPrefix(storageKey, "{")
	return strings.TrimSuffix(k, "}")
}
