// fetch.go
package cache

import (
	"bufio"
	"compress/bzip2"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
	"zombiezen.com/go/nix/nar"
	"zombiezen.com/go/nix/nixbase32"
)

// Fetch downloads the artifact for storeHash, verifies its file hash, and
// unpacks it into destDir. The archive and the extracted tree are both
// staged next to destDir and the tree is renamed into place only after a
// complete extraction, so destDir either does not exist or holds the full
// artifact.
func (c *Client) Fetch(ctx context.Context, storeHash, destDir string) error {
	info, err := c.NARInfo(ctx, storeHash)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(destDir), 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	archive, err := os.CreateTemp(filepath.Dir(destDir), ".fetch-"+storeHash+"-*")
	if err != nil {
		return fmt.Errorf("creating staging file: %w", err)
	}
	defer os.Remove(archive.Name())
	defer archive.Close()

	if err := c.download(ctx, info, archive); err != nil {
		return err
	}

	if err := verifyFileHash(archive.Name(), info.FileHash); err != nil {
		return fmt.Errorf("verifying %s: %w", storeHash, err)
	}

	staging := stagingDir(destDir)
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("clearing staging directory: %w", err)
	}
	if err := unpack(archive.Name(), staging, info.Compression); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("unpacking %s: %w", storeHash, err)
	}
	if err := os.Rename(staging, destDir); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("installing %s: %w", storeHash, err)
	}

	c.log.Debug().Str("hash", storeHash).Str("dest", destDir).Msg("fetched artifact")
	return nil
}

// stagingDir names the extraction directory for an entry. The dot prefix
// keeps in-progress trees out of store listings.
func stagingDir(destDir string) string {
	return filepath.Join(filepath.Dir(destDir), "."+filepath.Base(destDir)+".part")
}

// verifyFileHash compares the SHA-256 of the file against the expected
// digest, which binary caches publish in Nix base32.
func verifyFileHash(path, expected string) error {
	if expected == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return fmt.Errorf("hashing archive: %w", err)
	}

	actual := nixbase32.EncodeToString(hasher.Sum(nil))
	if actual != expected {
		return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, expected, actual)
	}
	return nil
}

// unpack decompresses and extracts a NAR archive into destDir.
func unpack(archivePath, destDir, compression string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	switch compression {
	case "xz":
		r, err = xz.NewReader(r)
		if err != nil {
			return fmt.Errorf("creating xz reader: %w", err)
		}
	case "bzip2":
		r = bzip2.NewReader(r)
	case "none", "":
	default:
		return fmt.Errorf("unsupported compression: %s", compression)
	}

	return extractNAR(r, destDir)
}

// extractNAR writes every entry of a plain NAR stream under destDir.
func extractNAR(r io.Reader, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	nr := nar.NewReader(r)
	for {
		hdr, err := nr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading nar entry: %w", err)
		}

		target := filepath.Join(destDir, filepath.FromSlash(hdr.Path))

		switch {
		case hdr.Mode.IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
		case hdr.Mode.Type() == os.ModeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating parent directory: %w", err)
			}
			// Unpacking over an existing entry replaces prior links.
			os.Remove(target)
			if err := os.Symlink(hdr.LinkTarget, target); err != nil {
				return fmt.Errorf("creating symlink %s: %w", target, err)
			}
		case hdr.Mode.IsRegular():
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating parent directory: %w", err)
			}

			perm := os.FileMode(0o644)
			if hdr.Mode&0o111 != 0 {
				perm = 0o755
			}

			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
			if err != nil {
				return fmt.Errorf("creating file %s: %w", target, err)
			}
			written, err := io.Copy(out, nr)
			out.Close()
			if err != nil {
				return fmt.Errorf("writing %s: %w", target, err)
			}
			if written != hdr.Size {
				return fmt.Errorf("short write for %s: %d of %d bytes", target, written, hdr.Size)
			}
		}
	}
	return nil
}
