package main

import "strings"

// FilterBooks returns the records matching both the free-text term and the
// status criterion, preserving the source collection order. A record
// matches the term when the case-insensitive concatenation of its title,
// author and space-joined genres contains it; the empty term matches all.
// The status must match exactly unless the `All` sentinel is given.
func FilterBooks(books []Book, term string, status Status) []Book {
	needle := strings.ToLower(term)
	out := make([]Book, 0, len(books))
	for _, b := range books {
		haystack := strings.ToLower(b.Title + b.Author + strings.Join(b.Genres, " "))
		if !strings.Contains(haystack, needle) {
			continue
		}
		if status != StatusAll && b.Status != status {
			continue
		}
		out = append(out, b)
	}
	return out
}
