package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expenseflow/approval_backend/internal/apperrors"
	"github.com/expenseflow/approval_backend/internal/core/domain"
	portsrepo "github.com/expenseflow/approval_backend/internal/core/ports/repositories"
	"github.com/expenseflow/approval_backend/internal/middleware"
	"github.com/expenseflow/approval_backend/internal/models"
)

type PgxExpenseRepository struct {
	BaseRepository
}

func newPgxExpenseRepository(pool *pgxpool.Pool) portsrepo.ExpenseRepository {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ExpenseRepository = (*PgxExpenseRepository)(nil)

func toModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ExpenseID:         d.ExpenseID,
		CompanyID:         d.CompanyID,
		RequesterID:       d.RequesterID,
		Description:       d.Description,
		TotalAmount:       d.TotalAmount,
		CurrencyCode:      d.CurrencyCode,
		Status:            string(d.Status),
		ApprovalRuleID:    d.ApprovalRuleID,
		CurrentApproverID: d.CurrentApproverID,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainExpense(m models.Expense) domain.Expense {
	return domain.Expense{
		ExpenseID:         m.ExpenseID,
		CompanyID:         m.CompanyID,
		RequesterID:       m.RequesterID,
		Description:       m.Description,
		TotalAmount:       m.TotalAmount,
		CurrencyCode:      m.CurrencyCode,
		Status:            domain.ExpenseStatus(m.Status),
		ApprovalRuleID:    m.ApprovalRuleID,
		CurrentApproverID: m.CurrentApproverID,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func toModelApprovalLine(d domain.ApprovalLine) models.ApprovalLine {
	return models.ApprovalLine{
		LineID:        d.LineID,
		ExpenseID:     d.ExpenseID,
		ApproverID:    d.ApproverID,
		Rank:          d.Rank,
		Status:        string(d.Status),
		Comment:       d.Comment,
		ApprovalDate:  d.ApprovalDate,
		RejectionDate: d.RejectionDate,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainApprovalLine(m models.ApprovalLine) domain.ApprovalLine {
	return domain.ApprovalLine{
		LineID:        m.LineID,
		ExpenseID:     m.ExpenseID,
		ApproverID:    m.ApproverID,
		Rank:          m.Rank,
		Status:        domain.ApprovalLineStatus(m.Status),
		Comment:       m.Comment,
		ApprovalDate:  m.ApprovalDate,
		RejectionDate: m.RejectionDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const expenseColumns = `expense_id, company_id, requester_id, description, total_amount, currency_code, status, approval_rule_id, current_approver_id, created_at, created_by, last_updated_at, last_updated_by`

func scanExpense(row pgx.Row) (*models.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID,
		&m.CompanyID,
		&m.RequesterID,
		&m.Description,
		&m.TotalAmount,
		&m.CurrencyCode,
		&m.Status,
		&m.ApprovalRuleID,
		&m.CurrentApproverID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	m := toModelExpense(expense)
	query := `
		INSERT INTO expenses (expense_id, company_id, requester_id, description, total_amount, currency_code, status, approval_rule_id, current_approver_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ExpenseID,
		m.CompanyID,
		m.RequesterID,
		m.Description,
		m.TotalAmount,
		m.CurrencyCode,
		m.Status,
		m.ApprovalRuleID,
		m.CurrentApproverID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE expense_id = $1;`
	m, err := scanExpense(r.Pool.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find expense by ID %s: %w", expenseID, err)
	}
	expense := toDomainExpense(*m)
	return &expense, nil
}

func (r *PgxExpenseRepository) FindApprovalLinesByExpenseID(ctx context.Context, expenseID string) ([]domain.ApprovalLine, error) {
	query := `
		SELECT line_id, expense_id, approver_id, rank, status, comment, approval_date, rejection_date, created_at, created_by, last_updated_at, last_updated_by
		FROM approval_lines
		WHERE expense_id = $1
		ORDER BY rank ASC;
	`
	rows, err := r.Pool.Query(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find approval lines for expense %s: %w", expenseID, err)
	}
	defer rows.Close()

	var lines []domain.ApprovalLine
	for rows.Next() {
		var m models.ApprovalLine
		err := rows.Scan(
			&m.LineID,
			&m.ExpenseID,
			&m.ApproverID,
			&m.Rank,
			&m.Status,
			&m.Comment,
			&m.ApprovalDate,
			&m.RejectionDate,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval line row: %w", err)
		}
		lines = append(lines, toDomainApprovalLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval line rows: %w", err)
	}
	return lines, nil
}

func (r *PgxExpenseRepository) ListExpensesByCompany(ctx context.Context, companyID string, limit int, offset int) ([]domain.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses for company %s: %w", companyID, err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		m, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense row: %w", err)
		}
		expenses = append(expenses, toDomainExpense(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense rows: %w", err)
	}
	return expenses, nil
}

// lockExpenseRow takes a row lock on the expense for the duration of the
// transaction so concurrent workflow mutations serialize at the database.
func lockExpenseRow(ctx context.Context, tx pgx.Tx, expenseID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT expense_id FROM expenses WHERE expense_id = $1 FOR UPDATE;`, expenseID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock expense %s: %w", expenseID, err)
	}
	return nil
}

func updateExpenseWorkflowFields(ctx context.Context, tx pgx.Tx, expense domain.Expense) error {
	m := toModelExpense(expense)
	query := `
		UPDATE expenses
		SET status = $2, approval_rule_id = $3, current_approver_id = $4, last_updated_at = $5, last_updated_by = $6
		WHERE expense_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.ExpenseID,
		m.Status,
		m.ApprovalRuleID,
		m.CurrentApproverID,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense workflow fields for %s: %w", expense.ExpenseID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxExpenseRepository) SubmitExpenseWorkflow(ctx context.Context, expense domain.Expense, lines []domain.ApprovalLine) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if err := lockExpenseRow(ctx, tx, expense.ExpenseID); err != nil {
		return err
	}

	// Regeneration destroys any prior line set before inserting the new one.
	if _, err := tx.Exec(ctx, `DELETE FROM approval_lines WHERE expense_id = $1;`, expense.ExpenseID); err != nil {
		return fmt.Errorf("failed to clear approval lines for expense %s: %w", expense.ExpenseID, err)
	}

	if len(lines) > 0 {
		insertQuery := `
			INSERT INTO approval_lines (line_id, expense_id, approver_id, rank, status, comment, approval_date, rejection_date, created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
		`
		batch := &pgx.Batch{}
		for _, line := range lines {
			m := toModelApprovalLine(line)
			batch.Queue(insertQuery,
				m.LineID,
				m.ExpenseID,
				m.ApproverID,
				m.Rank,
				m.Status,
				m.Comment,
				m.ApprovalDate,
				m.RejectionDate,
				m.CreatedAt,
				m.CreatedBy,
				m.LastUpdatedAt,
				m.LastUpdatedBy,
			)
		}
		results := tx.SendBatch(ctx, batch)
		for range lines {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("failed to insert approval line: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close approval line batch: %w", err)
		}
	}

	if err := updateExpenseWorkflowFields(ctx, tx, expense); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return err
	}
	logger.Info("Expense workflow submitted",
		"expense_id", expense.ExpenseID,
		"line_count", len(lines),
	)
	return nil
}

func (r *PgxExpenseRepository) ApplyApprovalDecision(ctx context.Context, expense domain.Expense, line domain.ApprovalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if err := lockExpenseRow(ctx, tx, expense.ExpenseID); err != nil {
		return err
	}

	m := toModelApprovalLine(line)
	lineQuery := `
		UPDATE approval_lines
		SET status = $2, comment = $3, approval_date = $4, rejection_date = $5, last_updated_at = $6, last_updated_by = $7
		WHERE line_id = $1;
	`
	tag, err := tx.Exec(ctx, lineQuery,
		m.LineID,
		m.Status,
		m.Comment,
		m.ApprovalDate,
		m.RejectionDate,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update approval line %s: %w", line.LineID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if err := updateExpenseWorkflowFields(ctx, tx, expense); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}
