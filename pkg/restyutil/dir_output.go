package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
)

// DirOutput writes every exchange into its own numbered file under a directory.
type DirOutput struct {
	directory string
	seq       *atomic.Uint64
}

// NewDirOutput empties dir and writes into it from then on.
func NewDirOutput(dir string) (DirOutput, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return DirOutput{}, err
	}
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return DirOutput{}, err
	}
	return DirOutput{directory: dir, seq: &atomic.Uint64{}}, nil
}

func (o DirOutput) Write(id string, contents string) {
	name := fmt.Sprintf("%05d_%s.txt", o.seq.Add(1), id)
	err := os.WriteFile(filepath.Join(o.directory, name), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write exchange dump", "id", id, "err", err)
	}
}
