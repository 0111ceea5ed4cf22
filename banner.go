package captivewebview

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

const bannerWidth = 80

// StartMessage returns the banner printed when the server comes up: the
// base URL, the content roots, a cd command for the common ancestor, and a
// direct link for each HTML page under the first root whose name starts
// with an uppercase letter. Informational only. Valid once Started is
// closed.
func (s *Server) StartMessage() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Starting HTTP server at %s for:\n", s.URL())
	for _, directory := range s.directories {
		for _, line := range wrapPath(directory, bannerWidth) {
			fmt.Fprintln(b, line)
		}
	}
	fmt.Fprintf(b, "cd %s\n", s.ancestor)
	for _, page := range s.pageLinks() {
		fmt.Fprintln(b, page)
	}
	return b.String()
}

// wrapPath breaks a long directory path over lines no wider than width,
// splitting at separators. The first line gets a "> " marker, continuation
// lines a matching indent.
func wrapPath(directory string, width int) []string {
	separator := string(filepath.Separator)
	segments := strings.SplitAfter(directory, separator)
	var lines []string
	line := "> "
	length := len(line)
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		if length+len(segment) > width && length > 2 {
			lines = append(lines, line)
			line = "  "
			length = len(line)
		}
		line += segment
		length += len(segment)
	}
	return append(lines, line)
}

// pageLinks lists URLs for HTML files under the first content root whose
// names start with an uppercase letter. Those are, by convention, the
// pages meant to be opened directly.
func (s *Server) pageLinks() []string {
	first := s.directories[0]
	var links []string
	filepath.WalkDir(first, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".html") {
			return nil
		}
		if initial, _ := utf8.DecodeRuneInString(name); !unicode.IsUpper(initial) {
			return nil
		}
		links = append(links,
			s.URL()+filepath.ToSlash(strings.TrimPrefix(path, first)))
		return nil
	})
	return links
}
