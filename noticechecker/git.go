package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// lsFiles lists the files under revision control, passing parameters
// through as pathspecs. The -z null terminators get unprintable file
// names through verbatim.
func lsFiles(parameters ...string) ([]string, error) {
	arguments := append([]string{"ls-files", "-z", "--"}, parameters...)
	command := exec.Command("git", arguments...)
	command.Stderr = os.Stderr
	output, err := command.Output()
	if err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}
	var paths []string
	for _, name := range bytes.Split(output, []byte{0}) {
		if len(name) > 0 {
			paths = append(paths, string(name))
		}
	}
	return paths, nil
}

// isModified reports whether path differs from its committed state. Any
// git failure, like not being in a repository at all, counts as modified
// so that the caller falls back to filesystem dates.
func isModified(path string) bool {
	command := exec.Command(
		"git", "diff", "--name-only", "--exit-code", "--", path)
	return command.Run() != nil
}

// lastCommitDate returns the date of the last commit that changed path,
// following renames but not counting the renames themselves.
func lastCommitDate(path string) (time.Time, error) {
	command := exec.Command(
		"git", "log", "--follow", "--diff-filter=r", "--max-count=1",
		"--pretty=format:%cI", "--", path)
	output, err := command.Output()
	if err != nil {
		return time.Time{}, err
	}
	text := strings.TrimSpace(string(output))
	if text == "" {
		return time.Time{}, fmt.Errorf("no commits for %q", path)
	}
	return time.Parse(time.RFC3339, text)
}

// modifiedDate is the last commit date of path, unless the working copy
// is dirtier than the repository, in which case the filesystem is the
// truthful source. Files git can't account for also get the filesystem
// date.
func modifiedDate(path string) time.Time {
	if !isModified(path) {
		if date, err := lastCommitDate(path); err == nil {
			return date
		}
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
