// library.go
package store

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Library is a library file found inside a store entry.
type Library struct {
	Name     string // e.g. "ssl" for libssl.so
	Path     string // absolute path
	Type     string // ".so", ".dylib", ".a"
	IsStatic bool
}

// libraryExtensions returns the extensions probed on the current OS.
func libraryExtensions() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{".dylib", ".a"}
	default:
		return []string{".so", ".a"}
	}
}

// FindLibrary searches the entry's library directories for lib<name> with
// any known extension, versioned suffixes included (libssl.so.3). Returns
// nil when nothing matches.
func (e Entry) FindLibrary(name string) *Library {
	for _, dir := range e.LibDirs() {
		for _, ext := range libraryExtensions() {
			filename := "lib" + name + ext
			full := filepath.Join(dir, filename)
			if fileExists(full) {
				return &Library{Name: name, Path: full, Type: ext, IsStatic: ext == ".a"}
			}
			matches, _ := filepath.Glob(filepath.Join(dir, filename+".*"))
			if len(matches) > 0 {
				return &Library{Name: name, Path: matches[0], Type: ext, IsStatic: ext == ".a"}
			}
		}
	}
	return nil
}

// HasLibrary reports whether the entry provides lib<name>.
func (e Entry) HasLibrary(name string) bool {
	return e.FindLibrary(name) != nil
}

// Libraries lists every library file in the entry's library directories.
func (e Entry) Libraries() []Library {
	var libs []Library
	seen := make(map[string]bool)

	for _, dir := range e.LibDirs() {
		dirents, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, d := range dirents {
			if d.IsDir() {
				continue
			}
			filename := d.Name()
			for _, ext := range libraryExtensions() {
				if !strings.HasSuffix(filename, ext) && !strings.Contains(filename, ext+".") {
					continue
				}
				full := filepath.Join(dir, filename)
				if seen[full] {
					break
				}
				seen[full] = true

				name := strings.TrimPrefix(filename, "lib")
				name = strings.SplitN(name, ".", 2)[0]
				libs = append(libs, Library{
					Name:     name,
					Path:     full,
					Type:     ext,
					IsStatic: ext == ".a",
				})
				break
			}
		}
	}
	return libs
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
