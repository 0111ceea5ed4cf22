package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"time"
)

// Checker scans the files under revision control and reports the state
// of each file's copyright notice, correcting dates and inserting
// missing notices as the edit mode allows.
type Checker struct {
	Edit                  string
	SummariseFirst        bool
	NoticeTemplate        string
	StopAfter             int
	ExemptNames           []string
	ExemptSuffixes        []string
	MissingExemptSuffixes []string
	IgnoreFile            string
	Verbose               bool
	LsParameters          []string

	overwrite *Overwrite
	editor    *Editor
	matcher   *PathMatcher
	noticed   []NoticedFile
}

// NewChecker returns a Checker with the default exemptions.
func NewChecker() *Checker {
	return &Checker{
		Edit:           "prompt",
		ExemptNames:    []string{"gradlew", "gradlew.bat", "CODE-OF-CONDUCT.md"},
		ExemptSuffixes: []string{".png", ".json", ".jar"},
		// Markdown copyright notices are longer and typically sit in a
		// legal section, so a missing one can't be inserted
		// automatically. An incorrect year can still be corrected.
		MissingExemptSuffixes: []string{".md"},
	}
}

// Run scans, reports and corrects. The int is the process exit status:
// zero, or 1 when any file couldn't be checked.
func (c *Checker) Run() (int, error) {
	mode, err := ParseEditMode(c.Edit)
	if err != nil {
		return 2, err
	}
	c.overwrite = NewOverwrite(mode)
	if c.editor, err = NewEditor(c.NoticeTemplate, time.Now()); err != nil {
		return 2, err
	}
	c.matcher = NewPathMatcher()
	if c.IgnoreFile != "" {
		if c.matcher, err = NewPathMatcherFromFile(c.IgnoreFile); err != nil {
			return 2, err
		}
	}

	if err := c.scan(); err != nil {
		return 2, err
	}
	if c.printErrors() > 0 {
		return 1, nil
	}
	c.printSummary()
	if c.SummariseFirst {
		for _, noticed := range c.noticed {
			if _, err := c.correctDate(noticed); err != nil {
				return 2, err
			}
		}
		for _, noticed := range c.noticed {
			if _, err := c.correctMissing(noticed); err != nil {
				return 2, err
			}
		}
	}
	return 0, nil
}

func (c *Checker) scan() error {
	if c.Verbose {
		fmt.Println("Scanning...")
	} else {
		fmt.Println("Scan dots:")
		for state := StateExempt; state <= StateError; state++ {
			fmt.Println(state.Mark(), state)
		}
	}
	paths, err := lsFiles(c.LsParameters...)
	if err != nil {
		return err
	}
	count := 0
	for _, scanPath := range paths {
		count++
		noticed := c.scanFile(scanPath)
		if c.Verbose {
			fmt.Println(noticed)
		} else {
			fmt.Print(noticed.State.Mark())
		}
		c.noticed = append(c.noticed, noticed)
		if c.StopAfter > 0 && count >= c.StopAfter {
			break
		}
	}
	if !c.Verbose {
		fmt.Println()
	}
	fmt.Printf("Path count: %d.\n", count)
	return nil
}

// scanFile classifies one file. Unless the summary comes first, any
// correction is offered right away, and an applied correction sends the
// file around again so its record reflects the file as edited.
func (c *Checker) scanFile(scanPath string) NoticedFile {
	if slices.Contains(c.ExemptSuffixes, filepath.Ext(scanPath)) ||
		slices.Contains(c.ExemptNames, filepath.Base(scanPath)) ||
		c.matcher.Match(scanPath) != "" {
		return NewExemptFile(scanPath)
	}

	for {
		noticed := NewNoticedFile(scanPath)
		if noticed.Err != nil || c.SummariseFirst {
			return noticed
		}
		if corrected, err := c.correctDate(noticed); err != nil {
			return noticed.WithError(err)
		} else if corrected {
			continue
		}
		if corrected, err := c.correctMissing(noticed); err != nil {
			return noticed.WithError(err)
		} else if corrected {
			continue
		}
		return noticed
	}
}

// correctDate offers the overwrite that fixes an incorrect year. The
// corrected year is the current year, not the last commit's: the edit
// itself is a change that has to be committed.
func (c *Checker) correctDate(noticed NoticedFile) (bool, error) {
	if noticed.State != StateIncorrectDate {
		return false, nil
	}
	edited, err := noticed.Notice.RewriteYear(time.Now().Year())
	if err != nil {
		return false, err
	}
	defer os.Remove(edited)
	return c.overwrite.Prompt(noticed.Path, edited)
}

// correctMissing offers to insert a generated notice, except for
// suffixes whose notices are too bespoke to generate.
func (c *Checker) correctMissing(noticed NoticedFile) (bool, error) {
	if noticed.State != StateMissing || slices.Contains(
		c.MissingExemptSuffixes, filepath.Ext(noticed.Path)) {
		return false, nil
	}
	edited, err := c.editor.Edit(noticed.Path)
	if err != nil {
		return false, err
	}
	defer os.Remove(edited)
	return c.overwrite.Prompt(noticed.Path, edited)
}

func (c *Checker) printErrors() int {
	count := 0
	for _, noticed := range c.noticed {
		if noticed.Err == nil {
			continue
		}
		count++
		fmt.Println(noticed.Path)
		fmt.Println(noticed.Err)
		if errors.Is(noticed.Err, errNotText) {
			fmt.Printf("Should the suffix %q be an exempt binary format?\n",
				filepath.Ext(noticed.Path))
		}
	}
	return count
}

func (c *Checker) printSummary() {
	formats := map[string]map[string][]string{}
	noticeSuffixes := map[string][]string{}
	for _, noticed := range c.noticed {
		name := filepath.Base(noticed.Path)
		fileFormat := filepath.Ext(noticed.Path)
		if slices.Contains(c.ExemptNames, name) || fileFormat == "" {
			fileFormat = name
		}
		states, found := formats[fileFormat]
		if !found {
			states = map[string][]string{}
			formats[fileFormat] = states
		}
		stateName := noticed.State.String()
		states[stateName] = append(states[stateName], noticed.Path)

		noticeSuffix := "None"
		if noticed.Notice != nil {
			noticeSuffix = strconv.Quote(noticed.Notice.Suffix)
		}
		noticeSuffixes[noticeSuffix] = append(
			noticeSuffixes[noticeSuffix], noticed.Path)
	}

	fmt.Println("\nSummary by file format or exempt name and state:")
	for _, fileFormat := range sortedKeys(formats) {
		fmt.Println(fileFormat)
		states := formats[fileFormat]
		for _, stateName := range sortedKeys(states) {
			fmt.Printf("    %s: %s\n",
				stateName, firstOrCount(states[stateName]))
		}
	}
	fmt.Println("\nSummary by copyright:")
	for _, noticeSuffix := range sortedKeys(noticeSuffixes) {
		fmt.Println(noticeSuffix, firstOrCount(noticeSuffixes[noticeSuffix]))
	}
}

func sortedKeys[Value any](subject map[string]Value) []string {
	keys := make([]string, 0, len(subject))
	for key := range subject {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// firstOrCount names a single path outright, and otherwise just counts.
func firstOrCount(paths []string) string {
	if len(paths) == 1 {
		return paths[0]
	}
	return strconv.Itoa(len(paths)) + "."
}
