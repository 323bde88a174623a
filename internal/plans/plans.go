// Package plans builds, stores and loads rename plans derived from scan
// reports. A plan is reviewed before the renamer applies it.
package plans

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Nomadcxx/stampwatch/internal/paths"
	"github.com/Nomadcxx/stampwatch/internal/scanner"
	"github.com/Nomadcxx/stampwatch/internal/timestamp"
)

// ErrNoPlan is returned when a requested plan does not exist.
var ErrNoPlan = errors.New("no plan found")

// Skip reasons recorded on operations that will not run.
const (
	ReasonNoTimestamp = "no timestamp"
	ReasonNoFullDate  = "timestamp has no full date"
	ReasonAmbiguous   = "ambiguous day/month order"
	ReasonUnchanged   = "already named"
	ReasonCollision   = "target collides with another file in the plan"
)

// Operation is a single planned rename.
type Operation struct {
	Source    string               `json:"source"`
	Target    string               `json:"target,omitempty"`
	Timestamp *timestamp.Timestamp `json:"timestamp,omitempty"`
	Skipped   bool                 `json:"skipped,omitempty"`
	Reason    string               `json:"reason,omitempty"`
}

// Summary contains summary stats for a plan
type Summary struct {
	Total   int `json:"total"`
	Renames int `json:"renames"`
	Skipped int `json:"skipped"`
}

// RenamePlan represents a full rename plan
type RenamePlan struct {
	ID         string      `json:"id"`
	CreatedAt  time.Time   `json:"created_at"`
	Command    string      `json:"command"`
	ScanID     string      `json:"scan_id,omitempty"`
	Root       string      `json:"root"`
	Template   string      `json:"template"`
	Summary    Summary     `json:"summary"`
	Operations []Operation `json:"operations"`
}

// Renames returns the operations that will run.
func (p *RenamePlan) Renames() []Operation {
	var out []Operation
	for _, op := range p.Operations {
		if !op.Skipped {
			out = append(out, op)
		}
	}
	return out
}

// Create builds a rename plan from a scan report. Files in directories
// flagged for review keep their names when their own date is ambiguous.
func Create(report *scanner.Report, template string) (*RenamePlan, error) {
	if template == "" {
		template = DefaultTemplate
	}
	if err := ValidateTemplate(template); err != nil {
		return nil, err
	}

	plan := &RenamePlan{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Command:   "scan",
		ScanID:    report.ID,
		Root:      report.Root,
		Template:  template,
	}

	claimed := make(map[string]string)
	for _, dir := range report.Directories {
		for _, f := range dir.Files {
			op := plan.operationFor(dir, f)
			if !op.Skipped {
				if other, taken := claimed[op.Target]; taken {
					op.Skipped = true
					op.Reason = fmt.Sprintf("%s (%s)", ReasonCollision, filepath.Base(other))
				} else {
					claimed[op.Target] = op.Source
				}
			}
			plan.Operations = append(plan.Operations, op)
		}
	}

	plan.summarize()
	return plan, nil
}

func (p *RenamePlan) operationFor(dir scanner.DirectoryReport, f scanner.FileResult) Operation {
	op := Operation{Source: f.Path, Timestamp: f.Timestamp}
	skip := func(reason string) Operation {
		op.Skipped = true
		op.Reason = reason
		return op
	}

	switch {
	case f.Timestamp == nil:
		return skip(ReasonNoTimestamp)
	case f.Timestamp.DatePart != timestamp.PrecisionDay:
		return skip(ReasonNoFullDate)
	case dir.NeedsReview && f.Ambiguity != nil:
		return skip(ReasonAmbiguous)
	}

	name, err := Render(p.Template, f.Name, *f.Timestamp)
	if err != nil {
		return skip(err.Error())
	}
	op.Target = filepath.Join(filepath.Dir(f.Path), name)
	if op.Target == op.Source {
		op.Target = ""
		return skip(ReasonUnchanged)
	}
	return op
}

func (p *RenamePlan) summarize() {
	p.Summary = Summary{Total: len(p.Operations)}
	for _, op := range p.Operations {
		if op.Skipped {
			p.Summary.Skipped++
		} else {
			p.Summary.Renames++
		}
	}
}

// GetPlansDir returns the directory for plan files
func GetPlansDir() (string, error) {
	return paths.PlansDir()
}

func planPath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("invalid plan id %q", id)
	}
	dir, err := GetPlansDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rename-"+id+".json"), nil
}

// Save writes the plan to the plans directory.
func Save(plan *RenamePlan) error {
	path, err := planPath(plan.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plans directory: %w", err)
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan: %w", err)
	}
	return nil
}

// Load reads a plan by id.
func Load(id string) (*RenamePlan, error) {
	path, err := planPath(id)
	if err != nil {
		return nil, err
	}
	return loadFile(path)
}

func loadFile(path string) (*RenamePlan, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoPlan, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	var plan RenamePlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", filepath.Base(path), err)
	}
	return &plan, nil
}

// List returns every saved plan, newest first.
func List() ([]*RenamePlan, error) {
	dir, err := GetPlansDir()
	if err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(filepath.Join(dir, "rename-*.json"))
	if err != nil {
		return nil, err
	}

	var out []*RenamePlan
	for _, path := range matches {
		plan, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Latest returns the most recently created plan.
func Latest() (*RenamePlan, error) {
	all, err := List()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNoPlan
	}
	return all[0], nil
}

// Delete removes a saved plan.
func Delete(id string) error {
	path, err := planPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNoPlan, id)
		}
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	return nil
}
