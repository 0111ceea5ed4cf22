package main

import (
	"fmt"
	"testing"
	"time"
)

func TestScanFileExemptions(t *testing.T) {
	checker := NewChecker()
	checker.SummariseFirst = true
	checker.matcher = NewPathMatcher("**/generated/*")

	tests := []struct {
		path   string
		exempt bool
	}{
		{"assets/logo.png", true},
		{"gradlew", true},
		{"CODE-OF-CONDUCT.md", true},
		{"app/generated/Schema.kt", true},
		{"app/src/Main.kt", false},
	}
	for _, test := range tests {
		noticed := checker.scanFile(test.path)
		if exempt := noticed.State == StateExempt; exempt != test.exempt {
			t.Errorf("expected exempt %v for %q, got state %v",
				test.exempt, test.path, noticed.State)
		}
	}
}

func TestScanFileClassifies(t *testing.T) {
	checker := NewChecker()
	checker.SummariseFirst = true
	checker.matcher = NewPathMatcher()

	path := writeTestFile(t, "current.py", fmt.Sprintf(
		"# Copyright %d Omnissa, LLC.\npass\n", time.Now().Year()))
	if noticed := checker.scanFile(path); noticed.State != StateCorrect {
		t.Errorf("expected CORRECT, got %v", noticed.State)
	}
}

func TestFirstOrCount(t *testing.T) {
	if text := firstOrCount([]string{"only/path.py"}); text != "only/path.py" {
		t.Errorf("expected the single path, got %q", text)
	}
	if text := firstOrCount([]string{"a", "b", "c"}); text != "3." {
		t.Errorf("expected the count, got %q", text)
	}
}

func TestSortedKeys(t *testing.T) {
	keys := sortedKeys(map[string]int{"b": 1, "a": 2, "c": 3})
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("expected sorted keys, got %v", keys)
	}
}
