package caddyfile

import (
	"fmt"

	"github.com/ZebulonRouseFrantzich/nest/internal/store"
)

// Save renders doc and replaces the whole file at path. The write is atomic:
// on failure the previous contents are untouched.
func Save(doc *Document, path string) error {
	if err := store.WriteFileAtomic(path, []byte(Render(doc)+"\n")); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Load parses the file at path with a default parser.
func Load(path string) (*Document, error) {
	return NewParser().ParseFile(path)
}
