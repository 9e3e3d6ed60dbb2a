package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// Package is an unpacked Discord data package.
type Package struct {
	Root  string
	Index Index
}

// Open loads the channel index of the package rooted at root.
func Open(root string) (*Package, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve package path: %w", err)
	}

	idx, err := LoadIndex(filepath.Join(abs, "messages"))
	if err != nil {
		return nil, err
	}
	return &Package{Root: abs, Index: idx}, nil
}

// MessagesDir is the directory holding index.json and the channel directories.
func (p *Package) MessagesDir() string {
	return filepath.Join(p.Root, "messages")
}

// WalkChannels calls fn for each channel directory in lexical order. Loose
// files next to the channel directories are skipped. The first error from
// loading a channel or from fn stops the walk.
func (p *Package) WalkChannels(fn func(*Channel) error) error {
	entries, err := os.ReadDir(p.MessagesDir())
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		ch, err := LoadChannel(filepath.Join(p.MessagesDir(), e.Name()), p.Index)
		if err != nil {
			return err
		}
		if err := fn(ch); err != nil {
			return err
		}
	}
	return nil
}
