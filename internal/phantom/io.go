package phantom

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// LoadSurface reads one pre-extracted surface from disk. Files ending in
// .json hold a JSON array of {"x":..,"y":..,"z":..} objects; anything
// else is parsed as whitespace- or comma-separated "x y z" rows, with
// blank lines and '#' comments skipped. "nan" is accepted in either
// format and kept as an invalid point for the caller to filter.
func LoadSurface(path string) (Surface, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return loadSurfaceJSON(path)
	}
	return loadSurfaceXYZ(path)
}

func loadSurfaceJSON(path string) (Surface, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Surface
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

func loadSurfaceXYZ(path string) (Surface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s Surface
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ' ' || r == '\t' || r == ','
		})
		// FieldsFunc can leave empty strings on ", " separators
		kept := fields[:0]
		for _, fld := range fields {
			if fld != "" {
				kept = append(kept, fld)
			}
		}
		if len(kept) < 3 {
			return nil, fmt.Errorf("%s:%d: expected 3 coordinates, got %d", path, lineNo, len(kept))
		}
		var p Point
		for i, dst := range []*float64{&p.X, &p.Y, &p.Z} {
			v, err := strconv.ParseFloat(kept[i], 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: parse coordinate %d: %w", path, lineNo, i, err)
			}
			*dst = v
		}
		s = append(s, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s, nil
}

// LoadSurfaces expands a glob pattern and loads every match, returning
// the surfaces in lexical path order alongside the matched paths.
func LoadSurfaces(pattern string) ([]Surface, []string, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("bad surface glob %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no surface files match %q", pattern)
	}
	sort.Strings(paths)

	surfaces := make([]Surface, 0, len(paths))
	for _, p := range paths {
		s, err := LoadSurface(p)
		if err != nil {
			return nil, nil, err
		}
		surfaces = append(surfaces, s)
	}
	return surfaces, paths, nil
}
