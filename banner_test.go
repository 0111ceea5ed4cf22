package captivewebview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWrapPath(t *testing.T) {
	long := "/" + strings.Repeat("directory/", 12) + "end"
	lines := wrapPath(long, 40)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %v", lines)
	}
	if !strings.HasPrefix(lines[0], "> ") {
		t.Errorf("expected a > marker, got %q", lines[0])
	}
	joined := ""
	for i, line := range lines {
		if len(line) > 40 {
			t.Errorf("line %d too long: %q", i, line)
		}
		if i > 0 && !strings.HasPrefix(line, "  ") {
			t.Errorf("line %d not indented: %q", i, line)
		}
		joined += strings.TrimPrefix(strings.TrimPrefix(line, "> "), "  ")
	}
	if joined != long {
		t.Errorf("wrapping altered the path: %q", joined)
	}
}

func TestWrapPathShort(t *testing.T) {
	lines := wrapPath("/tmp/web", 80)
	if len(lines) != 1 || lines[0] != "> /tmp/web" {
		t.Errorf("expected one marked line, got %v", lines)
	}
}

func TestStartMessage(t *testing.T) {
	ancestor := t.TempDir()
	web := filepath.Join(ancestor, "web")
	if err := os.MkdirAll(filepath.Join(web, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"index.html":    "<html></html>",
		"Main.html":     "<html></html>",
		"sub/Demo.html": "<html></html>",
	} {
		path := filepath.Join(web, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	srv, err := NewServer(8001, web)
	if err != nil {
		t.Fatal(err)
	}
	message := srv.StartMessage()
	for _, want := range []string{
		"http://localhost:8001",
		"cd " + web,
		"http://localhost:8001/Main.html",
		"http://localhost:8001/sub/Demo.html",
	} {
		if !strings.Contains(message, want) {
			t.Errorf("expected %q in:\n%s", want, message)
		}
	}
	// Lowercase pages aren't surfaced as links.
	if strings.Contains(message, "8001/index.html") {
		t.Errorf("unexpected index link in:\n%s", message)
	}
}
