// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"path/filepath"

	"gopkg.microglot.org/gllgen/internal/fs"
	"gopkg.microglot.org/gllgen/internal/idl"
)

// NewDefaultFS builds the file system that grammar targets resolve against:
// the given roots in order, then the platform data directories. Targets are
// looked up relative to each root until one matches.
func NewDefaultFS(roots []string, lookup func(string) (string, bool)) (idl.FileSystem, error) {
	search := append([]string{}, roots...)
	search = append(search, getDefaultRoots(lookup)...)
	f := make(fs.FileSystemMulti, 0, len(search))
	for _, root := range search {
		absRoot, errAbs := filepath.Abs(root)
		if errAbs != nil {
			return nil, errAbs
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			return nil, err
		}
		f = append(f, rf)
	}
	return f, nil
}
