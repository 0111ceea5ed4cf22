package main

import (
	"strconv"
	"strings"
	"time"
)

// NoticeState classifies one revision-controlled file.
type NoticeState int

const (
	// StateExempt is for names and formats configured out of checking.
	StateExempt NoticeState = iota
	// StateMissing is for files with no copyright notice at all.
	StateMissing
	// StateCorrect is for notices whose year matches the modified date.
	StateCorrect
	// StateIncorrectDate is for notices with any other year.
	StateIncorrectDate
	// StateError is for files that couldn't be checked.
	StateError
)

var stateNames = [...]string{
	"EXEMPT", "MISSING", "CORRECT", "INCORRECT_DATE", "ERROR"}

var stateMarks = [...]string{"-", "0", ".", "X", "!"}

func (s NoticeState) String() string { return stateNames[s] }

// Mark is the single progress character printed for the state during a
// scan.
func (s NoticeState) Mark() string { return stateMarks[s] }

// NoticedFile is the outcome of checking one file.
type NoticedFile struct {
	Path     string
	Modified time.Time
	Notice   *Notice
	State    NoticeState
	Err      error
}

// NewExemptFile records path as exempt without reading it.
func NewExemptFile(path string) NoticedFile {
	return NoticedFile{Path: path, State: StateExempt}
}

// NewNoticedFile reads the notice in path and classifies it against the
// file's modified date.
func NewNoticedFile(path string) NoticedFile {
	notice, err := ReadNotice(path)
	if err != nil {
		return NoticedFile{Path: path, State: StateError, Err: err}
	}
	noticed := NoticedFile{
		Path: path, Modified: modifiedDate(path), Notice: notice}
	switch {
	case notice == nil:
		noticed.State = StateMissing
	case notice.Year != noticed.Modified.Year():
		noticed.State = StateIncorrectDate
	default:
		noticed.State = StateCorrect
	}
	return noticed
}

// WithError returns a copy of the record carrying err. The state is kept:
// the error report prints separately from the scan progress.
func (n NoticedFile) WithError(err error) NoticedFile {
	n.Err = err
	return n
}

func (n NoticedFile) String() string {
	summary := []string{n.State.String()}
	if !n.Modified.IsZero() || n.Notice != nil {
		summary = append(summary, n.Modified.Format(time.DateOnly))
		if n.Notice == nil {
			summary = append(summary, "None")
		} else {
			summary = append(summary,
				strconv.Quote(n.Notice.Style),
				strconv.Itoa(n.Notice.Year),
				strconv.Quote(n.Notice.Suffix))
		}
	}
	return n.Path + "\n" + strings.Join(summary, " ")
}
