package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expenseflow/approval_backend/internal/apperrors"
	"github.com/expenseflow/approval_backend/internal/core/domain"
	portsrepo "github.com/expenseflow/approval_backend/internal/core/ports/repositories"
	"github.com/expenseflow/approval_backend/internal/middleware"
	"github.com/expenseflow/approval_backend/internal/models"
)

type PgxRuleRepository struct {
	BaseRepository
}

func newPgxRuleRepository(pool *pgxpool.Pool) portsrepo.RuleRepository {
	return &PgxRuleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.RuleRepository = (*PgxRuleRepository)(nil)

func toModelRule(d domain.ApprovalRule) models.ApprovalRule {
	return models.ApprovalRule{
		RuleID:              d.RuleID,
		Name:                d.Name,
		CompanyID:           d.CompanyID,
		PercentageThreshold: d.PercentageThreshold,
		SpecificApproverID:  d.SpecificApproverID,
		Hybrid:              d.Hybrid,
		Active:              d.Active,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

func toDomainRule(m models.ApprovalRule, sequence []models.ApproverSequenceEntry) domain.ApprovalRule {
	entries := make([]domain.ApproverSequenceEntry, 0, len(sequence))
	for _, e := range sequence {
		entries = append(entries, domain.ApproverSequenceEntry{
			EntryID:    e.EntryID,
			RuleID:     e.RuleID,
			ApproverID: e.ApproverID,
			Rank:       e.Rank,
		})
	}
	return domain.ApprovalRule{
		RuleID:              m.RuleID,
		Name:                m.Name,
		CompanyID:           m.CompanyID,
		Sequence:            entries,
		PercentageThreshold: m.PercentageThreshold,
		SpecificApproverID:  m.SpecificApproverID,
		Hybrid:              m.Hybrid,
		Active:              m.Active,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

const ruleColumns = `rule_id, name, company_id, percentage_threshold, specific_approver_id, hybrid, active, created_at, created_by, last_updated_at, last_updated_by`

func scanRule(row pgx.Row) (*models.ApprovalRule, error) {
	var m models.ApprovalRule
	err := row.Scan(
		&m.RuleID,
		&m.Name,
		&m.CompanyID,
		&m.PercentageThreshold,
		&m.SpecificApproverID,
		&m.Hybrid,
		&m.Active,
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

func (r *PgxRuleRepository) loadSequence(ctx context.Context, ruleID string) ([]models.ApproverSequenceEntry, error) {
	query := `
		SELECT entry_id, rule_id, approver_id, rank
		FROM approver_sequences
		WHERE rule_id = $1
		ORDER BY rank ASC;
	`
	rows, err := r.Pool.Query(ctx, query, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approver sequence for rule %s: %w", ruleID, err)
	}
	defer rows.Close()

	var entries []models.ApproverSequenceEntry
	for rows.Next() {
		var e models.ApproverSequenceEntry
		if err := rows.Scan(&e.EntryID, &e.RuleID, &e.ApproverID, &e.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan approver sequence row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approver sequence rows: %w", err)
	}
	return entries, nil
}

func insertSequenceEntries(ctx context.Context, tx pgx.Tx, rule domain.ApprovalRule) error {
	if len(rule.Sequence) == 0 {
		return nil
	}
	query := `
		INSERT INTO approver_sequences (entry_id, rule_id, approver_id, rank)
		VALUES ($1, $2, $3, $4);
	`
	batch := &pgx.Batch{}
	for _, entry := range rule.Sequence {
		batch.Queue(query, entry.EntryID, rule.RuleID, entry.ApproverID, entry.Rank)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range rule.Sequence {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert approver sequence entry: %w", err)
		}
	}
	return nil
}

func (r *PgxRuleRepository) SaveRule(ctx context.Context, rule domain.ApprovalRule) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	m := toModelRule(rule)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	query := `
		INSERT INTO approval_rules (rule_id, name, company_id, percentage_threshold, specific_approver_id, hybrid, active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err = tx.Exec(ctx, query,
		m.RuleID,
		m.Name,
		m.CompanyID,
		m.PercentageThreshold,
		m.SpecificApproverID,
		m.Hybrid,
		m.Active,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save approval rule: %w", err)
	}

	if err := insertSequenceEntries(ctx, tx, rule); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return err
	}
	logger.Info("Approval rule saved", "rule_id", rule.RuleID, "company_id", rule.CompanyID)
	return nil
}

func (r *PgxRuleRepository) UpdateRule(ctx context.Context, rule domain.ApprovalRule) error {
	m := toModelRule(rule)

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	query := `
		UPDATE approval_rules
		SET name = $2, percentage_threshold = $3, specific_approver_id = $4, hybrid = $5, active = $6, last_updated_at = $7, last_updated_by = $8
		WHERE rule_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.RuleID,
		m.Name,
		m.PercentageThreshold,
		m.SpecificApproverID,
		m.Hybrid,
		m.Active,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update approval rule %s: %w", rule.RuleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	// The sequence is replaced wholesale; partial edits are not supported.
	if _, err := tx.Exec(ctx, `DELETE FROM approver_sequences WHERE rule_id = $1;`, rule.RuleID); err != nil {
		return fmt.Errorf("failed to clear approver sequence for rule %s: %w", rule.RuleID, err)
	}
	if err := insertSequenceEntries(ctx, tx, rule); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

func (r *PgxRuleRepository) DeactivateRule(ctx context.Context, ruleID string, updatedByUserID string) error {
	query := `
		UPDATE approval_rules
		SET active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE rule_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, ruleID, time.Now(), updatedByUserID)
	if err != nil {
		return fmt.Errorf("failed to deactivate approval rule %s: %w", ruleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxRuleRepository) FindRuleByID(ctx context.Context, ruleID string) (*domain.ApprovalRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM approval_rules WHERE rule_id = $1;`
	m, err := scanRule(r.Pool.QueryRow(ctx, query, ruleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find approval rule by ID %s: %w", ruleID, err)
	}

	sequence, err := r.loadSequence(ctx, m.RuleID)
	if err != nil {
		return nil, err
	}
	rule := toDomainRule(*m, sequence)
	return &rule, nil
}

// FindFirstActiveRuleForCompany picks the company's active rule deterministically
// by lowest rule ID.
func (r *PgxRuleRepository) FindFirstActiveRuleForCompany(ctx context.Context, companyID string) (*domain.ApprovalRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM approval_rules
		WHERE company_id = $1 AND active = TRUE
		ORDER BY rule_id ASC
		LIMIT 1;
	`
	m, err := scanRule(r.Pool.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active approval rule for company %s: %w", companyID, err)
	}

	sequence, err := r.loadSequence(ctx, m.RuleID)
	if err != nil {
		return nil, err
	}
	rule := toDomainRule(*m, sequence)
	return &rule, nil
}

func (r *PgxRuleRepository) ListRulesByCompany(ctx context.Context, companyID string, includeInactive bool) ([]domain.ApprovalRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM approval_rules
		WHERE company_id = $1 AND (active = TRUE OR $2)
		ORDER BY rule_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, companyID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval rules for company %s: %w", companyID, err)
	}
	defer rows.Close()

	var ruleModels []models.ApprovalRule
	for rows.Next() {
		m, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval rule row: %w", err)
		}
		ruleModels = append(ruleModels, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approval rule rows: %w", err)
	}

	rules := make([]domain.ApprovalRule, 0, len(ruleModels))
	for _, m := range ruleModels {
		sequence, err := r.loadSequence(ctx, m.RuleID)
		if err != nil {
			return nil, err
		}
		rules = append(rules, toDomainRule(m, sequence))
	}
	return rules, nil
}
