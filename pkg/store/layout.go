// layout.go
package store

import (
	"os"
	"path/filepath"
)

// Store entries unpack with a flat layout: lib/, lib64/, include/, bin/,
// lib/pkgconfig/. All path accessors return only directories that exist,
// so an entry with no libraries contributes nothing to a search path.

var (
	libSubdirs       = []string{"lib", "lib64"}
	includeSubdirs   = []string{"include"}
	binSubdirs       = []string{"bin"}
	pkgConfigSubdirs = []string{
		filepath.Join("lib", "pkgconfig"),
		filepath.Join("lib64", "pkgconfig"),
		filepath.Join("share", "pkgconfig"),
	}
)

// BinDirs returns the entry's existing executable directories.
func (e Entry) BinDirs() []string {
	return e.existing(binSubdirs)
}

// LibDirs returns the entry's existing library directories.
func (e Entry) LibDirs() []string {
	return e.existing(libSubdirs)
}

// IncludeDirs returns the entry's existing header directories.
func (e Entry) IncludeDirs() []string {
	return e.existing(includeSubdirs)
}

// PkgConfigDirs returns the entry's existing pkg-config directories.
func (e Entry) PkgConfigDirs() []string {
	return e.existing(pkgConfigSubdirs)
}

// PluginDirs returns existing lib/<subdir> directories, the convention for
// media-framework plugin search paths (e.g. subdir "gstreamer-1.0").
func (e Entry) PluginDirs(subdir string) []string {
	var dirs []string
	for _, lib := range libSubdirs {
		dir := filepath.Join(e.Path, lib, subdir)
		if dirExists(dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (e Entry) existing(subdirs []string) []string {
	var dirs []string
	for _, sub := range subdirs {
		dir := filepath.Join(e.Path, sub)
		if dirExists(dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
