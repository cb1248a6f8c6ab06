package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the image types searched when none are configured.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "tif", "webp"}

// IsImageFile reports whether name has one of exts, ignoring case. exts are
// given without the dot.
func IsImageFile(name string, exts []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if ext == strings.ToLower(strings.TrimPrefix(e, ".")) {
			return true
		}
	}
	return false
}

// FindImages lists image files under root, sorted by path. With recursive
// false only root itself is searched.
func FindImages(root string, exts []string, recursive bool) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if IsImageFile(path, exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// CollectInputs expands a mix of files and directories into image paths.
// Files are taken as given, whatever their extension; directories are
// searched with FindImages. Duplicates are dropped and the input order of
// the arguments is kept.
func CollectInputs(inputs []string, exts []string, recursive bool) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("failed to stat input: %w", err)
		}
		if !info.IsDir() {
			add(in)
			continue
		}
		found, err := FindImages(in, exts, recursive)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return out, nil
}

// ContourFileName returns the CSV name for an image: the base name up to
// its first underscore, followed by "_contour.csv". The extension is
// dropped first, so "scan.png" gives "scan_contour.csv" and
// "0042_masked.png" gives "0042_contour.csv".
func ContourFileName(imagePath string) string {
	return contourStem(imagePath) + "_contour.csv"
}

func contourStem(imagePath string) string {
	base := filepath.Base(imagePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.IndexByte(base, '_'); i > 0 {
		base = base[:i]
	}
	return base
}

// outputStems assigns each image a unique file stem. Images whose short
// stems collide fall back to their full base name. Base names can still
// repeat across directories; later repeats, in input order, get a -2, -3
// ... suffix.
func outputStems(paths []string) []string {
	count := make(map[string]int)
	for _, p := range paths {
		count[contourStem(p)]++
	}

	stems := make([]string, len(paths))
	used := make(map[string]bool, len(paths))
	for i, p := range paths {
		stem := contourStem(p)
		if count[stem] > 1 {
			base := filepath.Base(p)
			stem = strings.TrimSuffix(base, filepath.Ext(base))
		}
		unique := stem
		for n := 2; used[unique]; n++ {
			unique = fmt.Sprintf("%s-%d", stem, n)
		}
		used[unique] = true
		stems[i] = unique
	}
	return stems
}
