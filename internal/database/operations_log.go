package database

import (
	"database/sql"
	"time"
)

// OperationType defines the type of operation performed
type OperationType string

const (
	OpRename OperationType = "rename"
	OpUndo   OperationType = "undo"
	OpSkip   OperationType = "skip"
)

// ExecutedBy defines who/what triggered the operation
type ExecutedBy string

const (
	ExecDaemon ExecutedBy = "daemon"
	ExecCLI    ExecutedBy = "cli"
	ExecAPI    ExecutedBy = "api"
)

// OperationLog represents a logged operation
type OperationLog struct {
	ID            int64
	OperationType OperationType
	PlanID        string
	SourcePath    string
	TargetPath    string
	Reason        string
	ExecutedBy    ExecutedBy
	ExecutedAt    time.Time
}

// LogOperation records an operation in the audit log
func (s *Store) LogOperation(op OperationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO operations_log (
			operation_type, plan_id, source_path, target_path, reason, executed_by
		) VALUES (?, ?, ?, ?, ?, ?)
	`, op.OperationType, op.PlanID, op.SourcePath, op.TargetPath, op.Reason, op.ExecutedBy)

	return err
}

const operationColumns = `id, operation_type, COALESCE(plan_id, ''), source_path,
	COALESCE(target_path, ''), COALESCE(reason, ''), executed_by, executed_at`

// GetRecentOperations returns the most recent operations
func (s *Store) GetRecentOperations(limit int) ([]OperationLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT `+operationColumns+`
		FROM operations_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOperations(rows)
}

// GetPlanOperations returns the operations recorded for a plan in the order
// they ran.
func (s *Store) GetPlanOperations(planID string) ([]OperationLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT `+operationColumns+`
		FROM operations_log
		WHERE plan_id = ?
		ORDER BY id ASC
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOperations(rows)
}

// GetOperationStats returns operation counts by type
func (s *Store) GetOperationStats() (map[OperationType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT operation_type, COUNT(*) FROM operations_log GROUP BY operation_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[OperationType]int)
	for rows.Next() {
		var opType string
		var count int
		if err := rows.Scan(&opType, &count); err != nil {
			return nil, err
		}
		counts[OperationType(opType)] = count
	}

	return counts, rows.Err()
}

func scanOperations(rows *sql.Rows) ([]OperationLog, error) {
	var ops []OperationLog
	for rows.Next() {
		var op OperationLog
		var opType, execBy string
		err := rows.Scan(
			&op.ID, &opType, &op.PlanID, &op.SourcePath,
			&op.TargetPath, &op.Reason, &execBy, &op.ExecutedAt,
		)
		if err != nil {
			return nil, err
		}
		op.OperationType = OperationType(opType)
		op.ExecutedBy = ExecutedBy(execBy)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}
