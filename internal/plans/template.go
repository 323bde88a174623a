package plans

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Nomadcxx/stampwatch/internal/config"
	"github.com/Nomadcxx/stampwatch/internal/timestamp"
)

// DefaultTemplate renders "2024-03-15_143022_IMG.jpg".
const DefaultTemplate = config.DefaultTemplate

// Template placeholders. Everything else is a Go time layout.
const (
	placeholderName = "{name}" // stem with the timestamp removed
	placeholderStem = "{stem}" // original stem
	placeholderExt  = "{ext}"  // extension including the dot
)

var placeholders = []string{placeholderName, placeholderStem, placeholderExt}

// timeTokens start the clock section of a layout; clockTokens may follow.
var (
	timeTokens  = []string{"15", "03", "04", "05", "PM", "pm"}
	clockTokens = []string{"15", "03", "04", "05", "PM", "pm", ".000", ",000", ".999", ",999"}
)

const separators = "_-. :"

// ValidateTemplate rejects templates that cannot produce a file name in the
// same directory.
func ValidateTemplate(tmpl string) error {
	if tmpl == "" {
		return fmt.Errorf("rename template is empty")
	}
	if strings.ContainsAny(tmpl, `/\`) {
		return fmt.Errorf("rename template %q must not contain a path separator", tmpl)
	}
	if !strings.Contains(tmpl, "2006") && !strings.Contains(tmpl, "06") {
		return fmt.Errorf("rename template %q has no year", tmpl)
	}
	return nil
}

// Render builds the new name for a file whose base name is original and
// whose detected timestamp is ts. Timestamps without a time of day drop the
// template's clock section.
func Render(tmpl, original string, ts timestamp.Timestamp) (string, error) {
	if err := ValidateTemplate(tmpl); err != nil {
		return "", err
	}
	if ts.DatePart != timestamp.PrecisionDay {
		return "", fmt.Errorf("timestamp %s has no full date", ts)
	}

	ext := filepath.Ext(original)
	stem := strings.TrimSuffix(original, ext)
	name := strings.Trim(stemWithout(original, ts, len(stem)), separators)

	t := ts.Time()
	var b strings.Builder
	for _, part := range splitTemplate(tmpl) {
		switch part {
		case placeholderName:
			b.WriteString(name)
		case placeholderStem:
			b.WriteString(stem)
		case placeholderExt:
			b.WriteString(ext)
		default:
			layout := part
			if !ts.HasTime() {
				layout = dropClock(layout)
			}
			b.WriteString(t.Format(layout))
		}
	}

	out := b.String()
	outExt := filepath.Ext(out)
	out = strings.TrimRight(strings.TrimSuffix(out, outExt), separators) + outExt
	out = strings.TrimLeft(out, separators)
	if out == "" || out == outExt {
		return "", fmt.Errorf("template %q renders an empty name for %s", tmpl, original)
	}
	return out, nil
}

// stemWithout removes the timestamp span from the stem, leaving the
// descriptive part of the name.
func stemWithout(original string, ts timestamp.Timestamp, stemLen int) string {
	start, end := ts.Start, ts.End
	if start < 0 || end > len(original) || start >= end {
		return original[:stemLen]
	}
	if end > stemLen {
		end = stemLen
	}
	if start >= end {
		return original[:stemLen]
	}
	left := strings.TrimRight(original[:start], separators)
	right := strings.TrimLeft(original[end:stemLen], separators)
	if left != "" && right != "" {
		return left + "_" + right
	}
	return left + right
}

// splitTemplate separates placeholders from layout chunks.
func splitTemplate(tmpl string) []string {
	var parts []string
	for tmpl != "" {
		idx, ph := -1, ""
		for _, p := range placeholders {
			if i := strings.Index(tmpl, p); i >= 0 && (idx < 0 || i < idx) {
				idx, ph = i, p
			}
		}
		if idx < 0 {
			parts = append(parts, tmpl)
			break
		}
		if idx > 0 {
			parts = append(parts, tmpl[:idx])
		}
		parts = append(parts, ph)
		tmpl = tmpl[idx+len(ph):]
	}
	return parts
}

// dropClock removes the run of time tokens, and the separators that
// follow it, from a layout chunk.
func dropClock(layout string) string {
	first := -1
	for _, tok := range timeTokens {
		if i := strings.Index(layout, tok); i >= 0 && (first < 0 || i < first) {
			first = i
		}
	}
	if first < 0 {
		return layout
	}

	end := first
	for end < len(layout) {
		matched := false
		for _, tok := range clockTokens {
			if strings.HasPrefix(layout[end:], tok) {
				end += len(tok)
				matched = true
				break
			}
		}
		if !matched && strings.ContainsRune(separators, rune(layout[end])) {
			end++
			matched = true
		}
		if !matched {
			break
		}
	}

	return layout[:first] + layout[end:]
}
