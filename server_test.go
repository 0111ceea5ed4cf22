package captivewebview_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	captivewebview "github.com/omnissa-archive/captive-web-view"
)

// fixtureRoots builds an ancestor directory holding two content roots, web
// and lib, each with an index page and one more file.
func fixtureRoots(t *testing.T) (ancestor, web, lib string) {
	t.Helper()
	ancestor = t.TempDir()
	web = filepath.Join(ancestor, "web")
	lib = filepath.Join(ancestor, "lib")
	for _, directory := range []string{web, lib} {
		if err := os.Mkdir(directory, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, filepath.Join(web, "index.html"), "<html>web index</html>")
	writeFile(t, filepath.Join(web, "styles.css"), "body {}")
	writeFile(t, filepath.Join(lib, "index.html"), "<html>lib index</html>")
	writeFile(t, filepath.Join(lib, "library.js"), "export {}")
	return ancestor, web, lib
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewServerChecksDirectories(t *testing.T) {
	_, web, _ := fixtureRoots(t)
	missing := filepath.Join(web, "nope")
	if _, err := captivewebview.NewServer(0, web, missing); err == nil {
		t.Errorf("expected an error for missing directory %v", missing)
	}
	file := filepath.Join(web, "index.html")
	if _, err := captivewebview.NewServer(0, file); err == nil {
		t.Errorf("expected an error for non-directory %v", file)
	}
	if _, err := captivewebview.NewServer(0); err == nil {
		t.Error("expected an error for no directories")
	}
}

func TestAncestorAndRelatives(t *testing.T) {
	ancestor, web, lib := fixtureRoots(t)
	srv, err := captivewebview.NewServer(0, web, lib)
	if err != nil {
		t.Fatal(err)
	}
	if srv.Ancestor() != ancestor {
		t.Errorf("expected ancestor %v, got %v", ancestor, srv.Ancestor())
	}
	relatives := srv.Relatives()
	if len(relatives) != 2 || relatives[0] != "web" || relatives[1] != "lib" {
		t.Errorf("expected [web lib], got %v", relatives)
	}
}

func TestSingleRootAncestor(t *testing.T) {
	_, web, _ := fixtureRoots(t)
	srv, err := captivewebview.NewServer(0, web)
	if err != nil {
		t.Fatal(err)
	}
	if srv.Ancestor() != web {
		t.Errorf("expected ancestor %v, got %v", web, srv.Ancestor())
	}
	if relatives := srv.Relatives(); len(relatives) != 1 || relatives[0] != "." {
		t.Errorf("expected [.], got %v", relatives)
	}
	resolved, err := srv.Resolve("/")
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "index.html" {
		t.Errorf("expected index.html, got %v", resolved)
	}
}

func TestResolve(t *testing.T) {
	_, web, lib := fixtureRoots(t)
	srv, err := captivewebview.NewServer(0, web, lib)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		filename string
		resolved string
	}{
		{"", "web/index.html"},
		{"/", "web/index.html"},
		{"index.html", "web/index.html"},
		{"/web/index.html", "web/index.html"},
		// Only the basename matters: the directory segments don't steer
		// the search.
		{"/lib/index.html", "web/index.html"},
		{"/anything/at/all/library.js", "lib/library.js"},
		{"/web/", "web/index.html"},
		{"styles.css", "web/styles.css"},
	}
	for _, test := range tests {
		resolved, err := srv.Resolve(test.filename)
		if err != nil {
			t.Errorf("%q: %v", test.filename, err)
			continue
		}
		if resolved != test.resolved {
			t.Errorf("%q: expected %v, got %v",
				test.filename, test.resolved, resolved)
		}
	}
}

func TestResolveIsStable(t *testing.T) {
	_, web, lib := fixtureRoots(t)
	srv, err := captivewebview.NewServer(0, web, lib)
	if err != nil {
		t.Fatal(err)
	}
	// index.html exists under both roots; the first root must win, every
	// time.
	for i := 0; i < 3; i++ {
		resolved, err := srv.Resolve("index.html")
		if err != nil {
			t.Fatal(err)
		}
		if resolved != "web/index.html" {
			t.Fatalf("call %d: expected web/index.html, got %v", i, resolved)
		}
	}
}

func TestResolveNotFound(t *testing.T) {
	_, web, lib := fixtureRoots(t)
	srv, err := captivewebview.NewServer(0, web, lib)
	if err != nil {
		t.Fatal(err)
	}
	_, err = srv.Resolve("/web/absent.html")
	var notFound *captivewebview.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Name != "absent.html" {
		t.Errorf("expected absent.html, got %v", notFound.Name)
	}
	if expected := `File "absent.html" not found.`; err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}
