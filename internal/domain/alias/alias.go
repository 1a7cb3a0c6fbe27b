// Package alias turns a raw alias field value into the list of alias search terms.
package alias

import "strings"

// Separator splits a string alias field into individual aliases.
const Separator = ","

// Resolve normalizes a raw alias field value.
//
// A string is split on commas and each component trimmed. Duplicates and
// interior empty components are kept; trailing empty components are dropped. A []string is copied as is, as is a []any
// holding only strings (decoded JSON). Anything else, including nil and blank
// strings, resolves to an empty list.
func Resolve(raw any) []string {
	switch v := raw.(type) {
	case string:
		return splitString(v)
	case []string:
		if len(v) == 0 {
			return []string{}
		}
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return []string{}
			}
			out = append(out, s)
		}
		return out
	default:
		return []string{}
	}
}

func splitString(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, Separator)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// Titles returns the title set {title} ∪ aliases with blanks removed and
// duplicates collapsed, keeping first-seen order (aliases first, then title).
func Titles(title string, aliases []string) []string {
	seen := make(map[string]struct{}, len(aliases)+1)
	out := make([]string, 0, len(aliases)+1)
	add := func(s string) {
		if strings.TrimSpace(s) == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, a := range aliases {
		add(a)
	}
	add(title)
	return out
}
