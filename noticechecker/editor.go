package main

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

//go:embed copyright.txt
var defaultTemplate string

// commentLeaders maps file suffixes to their line comment leader.
var commentLeaders = map[string]string{
	".gitignore":  "#",
	".pro":        "#",
	".properties": "#",
	".py":         "#",
	".gradle":     "//",
	".java":       "//",
	".kt":         "//",
	".swift":      "//",
}

// xmlSuffixes get an XML comment instead of line comments.
var xmlSuffixes = map[string]bool{
	".xml":             true,
	".html":            true,
	".xcworkspacedata": true,
}

// Editor inserts a rendered notice at the top of files that are missing
// one.
type Editor struct {
	lines []string
}

// NewEditor renders the notice template for now's year. Template lines
// hold %Y where the year goes. An empty path renders the built-in
// template.
func NewEditor(path string, now time.Time) (*Editor, error) {
	template := defaultTemplate
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		template = string(content)
	}
	year := strconv.Itoa(now.Year())
	var lines []string
	for _, line := range strings.Split(
		strings.TrimRight(template, "\n"), "\n",
	) {
		lines = append(lines, strings.ReplaceAll(
			strings.TrimRight(line, " \t\r"), "%Y", year))
	}
	return &Editor{lines: lines}, nil
}

// Edit writes a copy of path with the notice inserted, and returns the
// copy's location. A suffix with no known comment style is an error:
// there's no safe way to embed the notice.
func (e *Editor) Edit(path string) (string, error) {
	suffix := filepath.Ext(path)
	if xmlSuffixes[suffix] {
		return e.editXML(path)
	}
	leader, found := commentLeaders[suffix]
	if !found {
		return "", fmt.Errorf(
			"no comment leader configured for file suffix %q", suffix)
	}
	return e.editWithLeader(path, leader)
}

// editWithLeader puts the notice lines first, each behind the comment
// leader, then a blank separator line unless the file already started
// with one, then the original content.
func (e *Editor) editWithLeader(path, leader string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var edited bytes.Buffer
	for _, line := range e.lines {
		fmt.Fprintln(&edited, leader+" "+line)
	}
	scanner := lineScanner(content)
	for index := 0; scanner.Scan(); index++ {
		line := scanner.Text()
		if index == 0 && strings.TrimSpace(line) != "" {
			edited.WriteString("\n")
		}
		fmt.Fprintln(&edited, line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return writeScratch(path, edited.Bytes())
}

// editXML puts the notice in an XML comment, after the first line when
// that line is an XML declaration or doctype, otherwise first.
func (e *Editor) editXML(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var notice bytes.Buffer
	notice.WriteString("<!--\n")
	for _, line := range e.lines {
		notice.WriteString("    " + line + "\n")
	}
	notice.WriteString("-->\n")

	var edited bytes.Buffer
	scanner := lineScanner(content)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			if strings.HasPrefix(line, "<?xml") ||
				strings.HasPrefix(line, "<!DOCTYPE ") {
				fmt.Fprintln(&edited, line)
				edited.Write(notice.Bytes())
				continue
			}
			edited.Write(notice.Bytes())
		}
		fmt.Fprintln(&edited, line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if first {
		edited.Write(notice.Bytes())
	}
	return writeScratch(path, edited.Bytes())
}

// writeScratch puts content in a scratch file named after the original,
// so that diffs against it read naturally, and returns its path.
func writeScratch(path string, content []byte) (string, error) {
	base := filepath.Base(path)
	suffix := filepath.Ext(base)
	scratch, err := os.CreateTemp(
		"", strings.TrimSuffix(base, suffix)+"_*"+suffix)
	if err != nil {
		return "", err
	}
	if _, err := scratch.Write(content); err != nil {
		scratch.Close()
		return "", err
	}
	return scratch.Name(), scratch.Close()
}
