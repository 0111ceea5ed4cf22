package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// EditMode is the overall answer to "overwrite this file?", set by the
// --edit flag, or later by a starred prompt response.
type EditMode int

const (
	// EditPrompt asks the user file by file.
	EditPrompt EditMode = iota
	// EditYes overwrites without asking.
	EditYes
	// EditNo never overwrites.
	EditNo
)

// ParseEditMode reads an --edit flag value by its first letter, so that
// y and n abbreviate yes and no.
func ParseEditMode(value string) (EditMode, error) {
	if value != "" {
		switch strings.ToLower(value[:1]) {
		case "y":
			return EditYes, nil
		case "n":
			return EditNo, nil
		case "p":
			return EditPrompt, nil
		}
	}
	return EditPrompt, fmt.Errorf(
		"edit must be yes, no or prompt, not %q", value)
}

// Overwrite applies edited copies over their originals, asking first
// unless an automatic answer is in force.
type Overwrite struct {
	mode EditMode
	in   *bufio.Reader
	out  io.Writer
}

func NewOverwrite(mode EditMode) *Overwrite {
	return &Overwrite{
		mode: mode,
		in:   bufio.NewReader(os.Stdin),
		out:  os.Stdout,
	}
}

// Prompt offers to overwrite original with the edited copy, previewing
// the diff, and reports whether the overwrite happened. A response
// ending * becomes the answer to every later prompt.
func (o *Overwrite) Prompt(original, edited string) (bool, error) {
	switch o.mode {
	case EditYes:
		return true, overwriteFile(edited, original)
	case EditNo:
		return false, nil
	}

	diff, err := diffFiles(original, edited)
	if err != nil {
		return false, err
	}
	fmt.Fprintln(o.out)
	if strings.TrimSpace(diff) == "" {
		return false, fmt.Errorf("editor made no changes to %q", original)
	}
	fmt.Fprint(o.out, diff)

	for {
		fmt.Fprint(o.out, "    Overwrite? (Y/y*/n/n*/?)")
		response, err := o.in.ReadString('\n')
		if err != nil {
			return false, err
		}
		response = strings.ToLower(strings.TrimSpace(response))
		switch {
		case response == "" || strings.HasPrefix(response, "y"):
			fmt.Fprintln(o.out, "Overwriting.")
			if strings.HasSuffix(response, "*") {
				o.mode = EditYes
			}
			return true, overwriteFile(edited, original)
		case strings.HasPrefix(response, "n"):
			fmt.Fprintln(o.out, "Keeping")
			if strings.HasSuffix(response, "*") {
				o.mode = EditNo
			}
			return false, nil
		case response == "?":
			fmt.Fprintln(o.out, diff)
			fmt.Fprintln(o.out)
			fmt.Fprintln(o.out, "y to overwrite, the default.")
			fmt.Fprintln(o.out, "n to keep and not overwrite.")
			fmt.Fprintln(o.out,
				"Append * to make that response to all future prompts.")
			fmt.Fprintln(o.out, "Ctrl-c to quit.")
			fmt.Fprintln(o.out)
		default:
			fmt.Fprintf(o.out,
				"Unrecognised %q. Ctrl-C to quit or ? for help.\n", response)
		}
	}
}

func overwriteFile(source, destination string) error {
	content, err := os.ReadFile(source)
	if err != nil {
		return err
	}
	return os.WriteFile(destination, content, 0o644)
}

// diffFiles renders a readable preview of the pending edit. git diff
// --no-index compares paths outside revision control, and exits 1 when
// they differ, which isn't a failure here.
func diffFiles(original, edited string) (string, error) {
	command := exec.Command(
		"git", "diff", "--no-index", "--", original, edited)
	output, err := command.Output()
	var exit *exec.ExitError
	if err != nil && !errors.As(err, &exit) {
		return "", err
	}
	return string(output), nil
}
