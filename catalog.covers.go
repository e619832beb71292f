package main

import (
	"fmt"
	"regexp"
	"strings"
)

// driveLinkPattern recognizes the shared-drive link shapes users paste as
// cover links and captures the file identifier. Covered shapes:
// `.../file/d/<ID>/...`, `...open?id=<ID>` and the docs variant of the first.
var driveLinkPattern = regexp.MustCompile(`(?:https?://)?(?:drive\.google\.com/(?:file/d/|open\?id=)|docs\.google\.com/file/d/)([a-zA-Z0-9_-]+)`)

// NormalizeCoverURL rewrites a recognized shared-drive link into a URL the
// image can be fetched from directly. Anything else, including the empty
// string, passes through unchanged.
func NormalizeCoverURL(url string) string {
	if url == "" {
		return ""
	}
	if m := driveLinkPattern.FindStringSubmatch(url); m != nil {
		return fmt.Sprintf("https://lh3.googleusercontent.com/u/0/d/%s", m[1])
	}
	return url
}

// SanitizeCoverFilename turns a book title into a safe name for the
// generated cover artifact offered for download.
func SanitizeCoverFilename(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(title))
	if cleaned == "" || strings.Trim(cleaned, "_") == "" {
		cleaned = "cover"
	}
	return cleaned + "_cover.png"
}
