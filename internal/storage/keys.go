package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// DocumentObjectKey lays objects out as <projectID>/<documentID>/<filename>.
func DocumentObjectKey(projectID, documentID, filename string) string {
	return path.Join(projectID, documentID, path.Base(filename))
}

type ObjectRef struct {
	ProjectID  string
	DocumentID string
	Filename   string
}

// ParseDocumentObjectKey reverses DocumentObjectKey. The key must already be
// unescaped.
func ParseDocumentObjectKey(key string) (ObjectRef, error) {
	parts := strings.SplitN(strings.TrimPrefix(key, "/"), "/", 3)
	if len(parts) != 3 || parts[2] == "" {
		return ObjectRef{}, fmt.Errorf("object key %q is not <project>/<document>/<file>", key)
	}
	for _, id := range parts[:2] {
		if _, err := uuid.Parse(id); err != nil {
			return ObjectRef{}, fmt.Errorf("object key %q: invalid id %q", key, id)
		}
	}
	return ObjectRef{ProjectID: parts[0], DocumentID: parts[1], Filename: parts[2]}, nil
}
