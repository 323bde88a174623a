package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Nomadcxx/stampwatch/internal/timestamp"
	"github.com/Nomadcxx/stampwatch/internal/ui"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatStamp renders ts or a dim dash when nothing was detected.
func formatStamp(ts *timestamp.Timestamp) string {
	if ts == nil {
		return ui.Dim("-")
	}
	return ui.Stamp(ts.String())
}

func formatConvention(c timestamp.Convention) string {
	if c == "" {
		return ui.Dim("-")
	}
	return strings.ToUpper(string(c))
}

func formatDecision(d timestamp.Decision) string {
	if d == timestamp.AutoResolve {
		return ui.Success(string(d))
	}
	return ui.Warning(string(d))
}

// parseDateFormat maps the --date-format flag to a convention. Empty
// falls back to the configured default.
func parseDateFormat(flag string, fallback timestamp.Convention) (timestamp.Convention, error) {
	conv, err := timestamp.ParseConvention(flag)
	if err != nil {
		return "", err
	}
	if conv == "" {
		return fallback, nil
	}
	return conv, nil
}

// listFiles returns the names of the regular, non-hidden files in dir,
// sorted.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// batchInput expands the arguments of analyze: a single directory
// becomes its files, anything else is taken as file names.
func batchInput(args []string) ([]string, string, error) {
	if len(args) != 1 {
		return args, "", nil
	}
	info, err := os.Stat(args[0])
	if err != nil || !info.IsDir() {
		return args, "", nil
	}

	dir, err := filepath.Abs(args[0])
	if err != nil {
		return nil, "", err
	}
	names, err := listFiles(dir)
	if err != nil {
		return nil, "", err
	}
	files := make([]string, len(names))
	for i, n := range names {
		files[i] = filepath.Join(dir, n)
	}
	return files, dir, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
