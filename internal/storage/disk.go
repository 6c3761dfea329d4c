package storage

import (
	"io/fs"
	"os"
	"path/filepath"
)

// DiskUsage is the size and file count of a set of paths.
type DiskUsage struct {
	Bytes int64 `json:"bytes"`
	Files int   `json:"files"`
}

// DiskUsageBytes returns the total size in bytes of the given paths.
func DiskUsageBytes(paths ...string) (int64, error) {
	u, err := Usage(paths...)
	return u.Bytes, err
}

// Usage sums the given paths. Each path may be a file or a directory (recursively summed).
// Empty or missing paths are skipped; errors during the walk are returned.
func Usage(paths ...string) (DiskUsage, error) {
	var total DiskUsage
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return DiskUsage{}, err
		}
		if !info.IsDir() {
			total.Bytes += info.Size()
			total.Files++
			continue
		}
		err = filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			total.Bytes += fi.Size()
			total.Files++
			return nil
		})
		if err != nil {
			return DiskUsage{}, err
		}
	}
	return total, nil
}

// MatchingUsage sums the regular files directly inside dir whose name satisfies match.
func MatchingUsage(dir string, match func(name string) bool) (DiskUsage, error) {
	var total DiskUsage
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return total, nil
		}
		return total, err
	}
	for _, e := range entries {
		if e.IsDir() || !match(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return total, err
		}
		total.Bytes += fi.Size()
		total.Files++
	}
	return total, nil
}
