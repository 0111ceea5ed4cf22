package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// copyrightRE recognises a copyright notice anywhere in a line, in three
// parts: the style, like "Copyright" or "Copyright (c)", then one to four
// year digits, then the suffix, which is usually the owner.
var copyrightRE = regexp.MustCompile(
	`(?i)(?P<style>copyright.*)\s+(?P<year>\d{1,4})\s+(?P<suffix>.*)`)

// errNotText reports file content that can't be scanned for a notice, a
// binary format for example.
var errNotText = errors.New("content isn't text")

const maxLineBytes = 1 << 20

func lineScanner(content []byte) *bufio.Scanner {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return scanner
}

// Notice is a copyright notice discovered in a file.
type Notice struct {
	Path      string
	LineIndex int
	Style     string
	Year      int
	Suffix    string

	yearStart int
	yearEnd   int
}

// ReadNotice scans path line by line and returns the first copyright
// notice, or nil if the file doesn't have one. Content that isn't valid
// UTF-8 is an errNotText error.
func ReadNotice(path string) (*Notice, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s", errNotText, path)
	}
	scanner := lineScanner(content)
	for index := 0; scanner.Scan(); index++ {
		line := strings.TrimRight(scanner.Text(), " \t")
		match := copyrightRE.FindStringSubmatchIndex(line)
		if match == nil {
			continue
		}
		year, _ := strconv.Atoi(line[match[4]:match[5]])
		return &Notice{
			Path:      path,
			LineIndex: index,
			Style:     line[match[2]:match[3]],
			Year:      year,
			Suffix:    line[match[6]:match[7]],
			yearStart: match[4],
			yearEnd:   match[5],
		}, nil
	}
	return nil, scanner.Err()
}

// RewriteYear writes a copy of the file with the notice year replaced by
// year, and returns the copy's path.
func (n *Notice) RewriteYear(year int) (string, error) {
	content, err := os.ReadFile(n.Path)
	if err != nil {
		return "", err
	}
	var edited bytes.Buffer
	scanner := lineScanner(content)
	for index := 0; scanner.Scan(); index++ {
		line := scanner.Text()
		if index == n.LineIndex {
			trimmed := strings.TrimRight(line, " \t")
			line = trimmed[:n.yearStart] +
				strconv.Itoa(year) + trimmed[n.yearEnd:]
		}
		fmt.Fprintln(&edited, line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return writeScratch(n.Path, edited.Bytes())
}
