package attachments

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const mirrorSeparator = "--"

// Mirror keeps a copy of every cached attachment on disk as <key>--<filename>
// so documents survive cache eviction.
type Mirror struct {
	dir string
}

func NewMirror(dir string) (Mirror, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return Mirror{}, fmt.Errorf("create mirror dir: %w", err)
	}
	return Mirror{dir: dir}, nil
}

func (m Mirror) path(att Attachment) string {
	return filepath.Join(m.dir, att.Key+mirrorSeparator+filepath.Base(att.Filename))
}

// find locates the file of key by exact prefix, the key is never used as a pattern.
func (m Mirror) find(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", ErrNotFound
	}
	names, err := m.Files()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		prefix, _, ok := strings.Cut(name, mirrorSeparator)
		if ok && prefix == key {
			return filepath.Join(m.dir, name), nil
		}
	}
	return "", ErrNotFound
}

func (m Mirror) Write(att Attachment) error {
	return os.WriteFile(m.path(att), att.Content, 0o644)
}

func (m Mirror) Read(key string) (Attachment, error) {
	path, err := m.find(key)
	if err != nil {
		return Attachment{}, err
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Attachment{}, ErrNotFound
	}
	if err != nil {
		return Attachment{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, err
	}
	_, filename, _ := strings.Cut(filepath.Base(path), mirrorSeparator)
	return Attachment{
		Key:      key,
		Filename: filename,
		Content:  content,
		Created:  info.ModTime(),
	}, nil
}

func (m Mirror) Remove(key string) error {
	path, err := m.find(key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// Files lists the names of every mirrored document.
func (m Mirror) Files() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Reset deletes every mirrored document, it is called at startup since no
// epoch survives a restart.
func (m Mirror) Reset() error {
	names, err := m.Files()
	if err != nil {
		return err
	}
	for _, name := range names {
		err = os.Remove(filepath.Join(m.dir, name))
		if err != nil {
			return err
		}
	}
	return nil
}
