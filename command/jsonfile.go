package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// JSONFile answers commands from canned response files: the command named
// "spanner" is answered by decoding spanner.json from the response
// directory. Commands without a matching file pass to the next handler.
type JSONFile struct {
	dir string
}

// NewJSONFile returns a JSONFile serving from the given directory. A file
// path is accepted too, and means its parent directory, which is
// convenient for callers that pass their own configuration file path.
func NewJSONFile(specifier string) *JSONFile {
	dir := specifier
	if info, err := os.Stat(specifier); err == nil && !info.IsDir() {
		dir = filepath.Dir(specifier)
	}
	return &JSONFile{dir: dir}
}

// Dir returns the response directory.
func (j *JSONFile) Dir() string {
	return j.dir
}

func (j *JSONFile) Handle(ctx context.Context, cmd Object) (Object, error) {
	name := cmd.Command()
	if name == "" || !filepath.IsLocal(name) {
		return nil, nil
	}
	name = strings.TrimSuffix(name, filepath.Ext(name)) + ".json"
	file := filepath.Join(j.dir, name)
	info, err := os.Stat(file)
	if err != nil || !info.Mode().IsRegular() {
		return nil, nil
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("response file %q: %w", file, err)
	}
	var response Object
	if err := json.Unmarshal(content, &response); err != nil {
		return nil, fmt.Errorf("response file %q: %w", file, err)
	}
	Logger(ctx).Debugf("Response from file %q.", file)
	return response, nil
}
