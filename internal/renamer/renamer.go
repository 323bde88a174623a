// Package renamer executes rename plans. It never overwrites an existing
// file and records every rename so a plan can be undone.
package renamer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Nomadcxx/stampwatch/internal/activity"
	"github.com/Nomadcxx/stampwatch/internal/database"
	"github.com/Nomadcxx/stampwatch/internal/logging"
	"github.com/Nomadcxx/stampwatch/internal/permissions"
	"github.com/Nomadcxx/stampwatch/internal/plans"
)

var (
	ErrTargetExists  = errors.New("target already exists")
	ErrSourceMissing = errors.New("source file missing")
	ErrNotPermitted  = errors.New("directory is not writable")
	ErrNoHistory     = errors.New("no operation history")
	ErrNothingToUndo = errors.New("nothing to undo")
)

// reasonCopy marks operations that copied instead of renaming.
const reasonCopy = "copy"

// Store records what the renamer did.
type Store interface {
	LogOperation(op database.OperationLog) error
	InsertSkippedItem(path string, reason database.SkipReason, errorDetails string) error
	GetPlanOperations(planID string) ([]database.OperationLog, error)
}

type Options struct {
	// KeepOriginal copies to the target and leaves the source in place.
	KeepOriginal bool
	ExecutedBy   database.ExecutedBy
	Logger       *logging.Logger
	Activity     *activity.Logger
}

// Result is the outcome of one operation.
type Result struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Done   bool   `json:"done"`
	Error  string `json:"error,omitempty"`
}

type Report struct {
	PlanID  string   `json:"plan_id"`
	DryRun  bool     `json:"dry_run"`
	Applied int      `json:"applied"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Results []Result `json:"results"`
}

type Renamer struct {
	opts  Options
	store Store
}

// New creates a renamer. store may be nil, in which case nothing is
// recorded and Undo is unavailable.
func New(opts Options, store Store) *Renamer {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.ExecutedBy == "" {
		opts.ExecutedBy = database.ExecCLI
	}
	return &Renamer{opts: opts, store: store}
}

// Apply runs the plan's renames. Targets that already exist are reported
// and queued for review rather than overwritten. With dryRun set nothing
// on disk changes.
func (r *Renamer) Apply(ctx context.Context, plan *plans.RenamePlan, dryRun bool) (*Report, error) {
	report := &Report{PlanID: plan.ID, DryRun: dryRun}

	for _, op := range plan.Renames() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := Result{Source: op.Source, Target: op.Target}
		start := time.Now()

		var err error
		if dryRun {
			err = checkPaths(op.Source, op.Target)
		} else {
			err = r.move(op.Source, op.Target)
		}

		switch {
		case err == nil:
			res.Done = !dryRun
			report.Applied++
			if !dryRun {
				r.logOperation(database.OperationLog{
					OperationType: database.OpRename,
					PlanID:        plan.ID,
					SourcePath:    op.Source,
					TargetPath:    op.Target,
					Reason:        r.reason(),
				})
			}
		case errors.Is(err, ErrTargetExists):
			res.Error = err.Error()
			report.Skipped++
			if !dryRun {
				r.queueForReview(op.Source, err)
			}
		default:
			res.Error = err.Error()
			report.Failed++
			r.opts.Logger.Error("renamer", "Rename failed", err,
				logging.F("source", op.Source), logging.F("target", op.Target))
		}

		r.logActivity(activity.Entry{
			Action:     activity.ActionRename,
			Source:     op.Source,
			Target:     op.Target,
			PlanID:     plan.ID,
			Detected:   detected(op),
			DryRun:     dryRun,
			Success:    err == nil,
			DurationMs: time.Since(start).Milliseconds(),
			Error:      res.Error,
		})
		report.Results = append(report.Results, res)
	}

	r.opts.Logger.Info("renamer", "Plan applied",
		logging.F("plan", plan.ID),
		logging.F("dry_run", dryRun),
		logging.F("applied", report.Applied),
		logging.F("skipped", report.Skipped),
		logging.F("failed", report.Failed))

	return report, nil
}

// Undo reverses the renames recorded for planID, newest first. Renames
// that were already undone are left alone.
func (r *Renamer) Undo(ctx context.Context, planID string) (*Report, error) {
	if r.store == nil {
		return nil, ErrNoHistory
	}
	ops, err := r.store.GetPlanOperations(planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan history: %w", err)
	}

	undone := make(map[string]bool)
	for _, op := range ops {
		if op.OperationType == database.OpUndo {
			undone[op.TargetPath] = true
		}
	}

	report := &Report{PlanID: planID}
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		if op.OperationType != database.OpRename || undone[op.SourcePath] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := Result{Source: op.TargetPath, Target: op.SourcePath}
		if op.Reason == reasonCopy {
			err = os.Remove(op.TargetPath)
		} else {
			err = r.renameFile(op.TargetPath, op.SourcePath)
		}

		if err != nil {
			res.Error = err.Error()
			report.Failed++
			r.opts.Logger.Error("renamer", "Undo failed", err,
				logging.F("file", op.TargetPath), logging.F("original", op.SourcePath))
		} else {
			res.Done = true
			report.Applied++
			r.logOperation(database.OperationLog{
				OperationType: database.OpUndo,
				PlanID:        planID,
				SourcePath:    op.TargetPath,
				TargetPath:    op.SourcePath,
				Reason:        op.Reason,
			})
		}

		r.logActivity(activity.Entry{
			Action:  activity.ActionUndo,
			Source:  op.TargetPath,
			Target:  op.SourcePath,
			PlanID:  planID,
			Success: err == nil,
			Error:   res.Error,
		})
		report.Results = append(report.Results, res)
	}

	if len(report.Results) == 0 {
		return report, fmt.Errorf("%w for plan %s", ErrNothingToUndo, planID)
	}
	return report, nil
}

func (r *Renamer) reason() string {
	if r.opts.KeepOriginal {
		return reasonCopy
	}
	return ""
}

func (r *Renamer) move(src, dst string) error {
	if r.opts.KeepOriginal {
		if err := checkPaths(src, dst); err != nil {
			return err
		}
		if err := copyFile(src, dst); err != nil {
			return err
		}
		if err := permissions.MatchOwnership(src, dst); err != nil {
			r.opts.Logger.Warn("renamer", "Copy keeps the new owner",
				logging.F("file", dst), logging.F("error", err.Error()))
		}
		return nil
	}
	return r.renameFile(src, dst)
}

func (r *Renamer) renameFile(src, dst string) error {
	if err := checkPaths(src, dst); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(src), err)
	}
	return nil
}

func checkPaths(src, dst string) error {
	if _, err := os.Lstat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceMissing, src)
		}
		return err
	}
	if ok, err := permissions.CanRename(src); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: %s", ErrNotPermitted, filepath.Dir(src))
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrTargetExists, dst)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// copyFile copies src to dst, failing if dst appears in the meantime.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrTargetExists, dst)
		}
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", filepath.Base(src), err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func (r *Renamer) logOperation(op database.OperationLog) {
	if r.store == nil {
		return
	}
	op.ExecutedBy = r.opts.ExecutedBy
	if err := r.store.LogOperation(op); err != nil {
		r.opts.Logger.Warn("renamer", "Failed to record operation",
			logging.F("source", op.SourcePath), logging.F("error", err.Error()))
	}
}

func (r *Renamer) queueForReview(path string, cause error) {
	r.opts.Logger.Warn("renamer", "Target exists, skipping", logging.F("source", path))
	if r.store == nil {
		return
	}
	if err := r.store.InsertSkippedItem(path, database.SkipReasonTargetExists, cause.Error()); err != nil {
		r.opts.Logger.Warn("renamer", "Failed to queue skipped file",
			logging.F("source", path), logging.F("error", err.Error()))
	}
}

func (r *Renamer) logActivity(entry activity.Entry) {
	if r.opts.Activity == nil {
		return
	}
	if err := r.opts.Activity.Log(entry); err != nil {
		r.opts.Logger.Warn("renamer", "Failed to log activity", logging.F("error", err.Error()))
	}
}

func detected(op plans.Operation) string {
	if op.Timestamp == nil {
		return ""
	}
	return op.Timestamp.String()
}
