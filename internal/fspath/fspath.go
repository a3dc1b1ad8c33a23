// Package fspath normalizes the slash-separated paths used by the name
// server's command surface. Paths are absolute-rooted; segments are matched
// literally against directory names, so no dot or dot-dot handling exists.
package fspath

import "strings"

// Segments splits a path into its directory segments, discarding empty
// ones. "", "/" and "///" all describe the root and yield no segments.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// Join appends name to path with a single separating slash, keeping the
// result absolute-rooted.
func Join(path, name string) string {
	return Clean(Clean(path) + "/" + name)
}

// Clean returns the canonical form of a path: leading slash, single
// slashes between segments, no trailing slash. The root stays "/".
func Clean(path string) string {
	segments := Segments(path)
	if len(segments) == 0 {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}

// Split divides a path into its parent directory and final segment.
// The root has no final segment; Split("/") returns ("/", "").
func Split(path string) (dir, name string) {
	segments := Segments(path)
	if len(segments) == 0 {
		return "/", ""
	}
	name = segments[len(segments)-1]
	parent := segments[:len(segments)-1]
	if len(parent) == 0 {
		return "/", name
	}
	return "/" + strings.Join(parent, "/"), name
}
