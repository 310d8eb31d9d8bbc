package main

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alc6/pgtables/tables"
)

// ParseSpecFiles reads table definitions from path. A directory is walked for *.yaml and
// *.yml documents, read in lexical path order. A table may be defined only once.
func ParseSpecFiles(path string) ([]tables.Definition, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("spec path does not exist: %s", path)
		}
		return nil, fmt.Errorf("failed to stat spec path: %w", err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = discoverSpecFiles(path)
		if err != nil {
			return nil, err
		}
	}

	var defs []tables.Definition
	definedIn := make(map[string]string)
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read spec file %s: %w", f, err)
		}
		parsed, err := tables.ParseDocument(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		for _, def := range parsed {
			key := strings.ToLower(def.Name)
			if prev, ok := definedIn[key]; ok {
				return nil, fmt.Errorf("table %s is defined in both %s and %s", def.Name, prev, f)
			}
			definedIn[key] = f
		}
		slog.Debug("parsed spec file", "file", f, "tables", len(parsed))
		defs = append(defs, parsed...)
	}

	slog.Info("parsed table definitions", "files", len(files), "tables", len(defs))
	return defs, nil
}

func discoverSpecFiles(dir string) ([]string, error) {
	slog.Debug("scanning spec directory", "directory", dir)

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(d.Name()) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk spec directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}
