// Package textutil has small string and collection helpers shared across the
// bot.
package textutil

import (
	"fmt"
	"strings"
)

// Plural returns count and word, with an "s" appended when count is not 1.
func Plural(count int, word string) string {
	if count != 1 {
		word += "s"
	}
	return fmt.Sprintf("%d %s", count, word)
}

// ParseBool reports whether value spells an affirmative setting.
func ParseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "on", "t", "true", "y", "yes":
		return true
	}
	return false
}

// ParseSet splits a comma-separated string into its distinct non-empty
// tokens. When normalize is true, tokens are lowercased before insertion.
func ParseSet(item string, normalize bool) map[string]struct{} {
	return ParseSets([]string{item}, normalize)
}

// ParseSets is ParseSet over several comma-separated strings, collecting
// tokens from all of them into one set.
func ParseSets(items []string, normalize bool) map[string]struct{} {
	set := map[string]struct{}{}
	for _, item := range items {
		for _, token := range strings.Split(item, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			if normalize {
				token = strings.ToLower(token)
			}
			set[token] = struct{}{}
		}
	}
	return set
}

// SplitMap partitions m into the entries whose keys appear in keys and the
// rest. The input map is not modified.
func SplitMap[K comparable, V any](m map[K]V, keys []K) (with map[K]V, without map[K]V) {
	keySet := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		keySet[k] = struct{}{}
	}

	with = make(map[K]V)
	without = make(map[K]V)
	for k, v := range m {
		if _, ok := keySet[k]; ok {
			with[k] = v
		} else {
			without[k] = v
		}
	}
	return with, without
}
