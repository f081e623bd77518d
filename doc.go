// Package readability extracts the primary readable article from an
// arbitrary HTML page, reproducing the behavior of Mozilla's Readability
// algorithm: title, byline, language/direction, excerpt, site name,
// publication time, and a cleaned HTML fragment containing the main
// prose.
package readability
