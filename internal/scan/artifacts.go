package scan

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// isELF reports whether the file at path starts with the ELF magic.
func isELF(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	var head [4]byte
	n, err := f.Read(head[:])
	if err != nil || n < len(head) {
		// too short to be an ELF object; not an error for the walk
		return false, nil
	}
	return bytes.Equal(head[:], elfMagic), nil
}

// CollectArtifacts returns the sorted list of ELF artifacts under root.
func CollectArtifacts(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		ok, err := isELF(path)
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// deterministic scan order regardless of directory layout
	sort.Strings(files)
	return files, nil
}
