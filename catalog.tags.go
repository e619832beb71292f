package main

import "strings"

// AddTag appends the trimmed raw input to the genre tags of a draft.
// Empty input and tags already present (case-sensitive exact match) are
// ignored. The input slice is never mutated: a new slice is returned.
func AddTag(genres []string, rawInput string) []string {
	tag := strings.TrimSpace(rawInput)
	if tag == "" {
		return genres
	}
	for _, existing := range genres {
		if existing == tag {
			return genres
		}
	}
	out := make([]string, 0, len(genres)+1)
	out = append(out, genres...)
	return append(out, tag)
}

// RemoveTag removes the first occurrence of the tag by exact match.
// Absent tags are a no-op. The input slice is never mutated.
func RemoveTag(genres []string, tag string) []string {
	for i, existing := range genres {
		if existing == tag {
			out := make([]string, 0, len(genres)-1)
			out = append(out, genres[:i]...)
			return append(out, genres[i+1:]...)
		}
	}
	return genres
}

// SanitizeTags folds a raw tag list through the add rule so that stored
// genres are always trimmed, non-empty and unique within a record.
func SanitizeTags(raw []string) []string {
	tags := []string{}
	for _, r := range raw {
		tags = AddTag(tags, r)
	}
	return tags
}
