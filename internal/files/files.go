// Package files is the on-disk blob store for uploaded documents and
// generated artifacts. Writes are committed temp-then-rename so concurrent
// readers never observe a partial file.
package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Subfolders for generated artifacts. Uploaded documents live directly under
// the root, multer-style.
const (
	AdmitCardDir = "admitcards"
	ReceiptDir   = "receipts"
)

// Store writes blobs under a fixed root directory.
type Store struct {
	root string
}

// NewStore ensures the root and artifact subfolders exist.
func NewStore(root string) (*Store, error) {
	for _, dir := range []string{root, filepath.Join(root, AdmitCardDir), filepath.Join(root, ReceiptDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir: %w", err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the store's root directory, for static serving.
func (s *Store) Root() string { return s.root }

// SaveDocument stores an uploaded file under a collision-free timestamped
// name: <field>-<timestamp>-<entropy><ext>. Returns the stored path.
func (s *Store) SaveDocument(field, originalName string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%s-%d-%s%s",
		field,
		time.Now().UnixMilli(),
		uuid.NewString()[:8],
		strings.ToLower(filepath.Ext(originalName)),
	)
	return s.commit(filepath.Join(s.root, name), r)
}

// SaveArtifact stores generated bytes (admit card, receipt) under the given
// subfolder. Regeneration with the same name overwrites atomically.
func (s *Store) SaveArtifact(subdir, name string, data []byte) (string, error) {
	return s.commit(filepath.Join(s.root, subdir, name), strings.NewReader(string(data)))
}

// commit writes to a temp file in the destination directory and renames it
// into place.
func (s *Store) commit(dest string, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("commit file: %w", err)
	}
	return dest, nil
}

// Remove deletes a stored file. Paths outside the root are refused.
func (s *Store) Remove(path string) error {
	cleaned := filepath.Clean(path)
	if !strings.HasPrefix(cleaned, filepath.Clean(s.root)+string(filepath.Separator)) {
		return fmt.Errorf("path %q is outside the upload root", path)
	}
	if err := os.Remove(cleaned); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
