package repository

import (
	"context"
	"encoding/json"
	"mailsweep/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RuleRepository struct {
	db *pgxpool.Pool
}

func NewRuleRepository(db *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{db: db}
}

// CreateRule inserts a cleanup rule. Conditions and actions are stored as JSONB.
func (r *RuleRepository) CreateRule(ctx context.Context, rule *model.CleanupRule) error {
	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return err
	}
	actions, err := json.Marshal(rule.Actions)
	if err != nil {
		return err
	}
	var schedule []byte
	if rule.Schedule != nil {
		schedule, err = json.Marshal(rule.Schedule)
		if err != nil {
			return err
		}
	}

	query := `
        INSERT INTO cleanup_rules (user_id, name, conditions, actions, is_active, schedule, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id
    `
	return r.db.QueryRow(ctx, query,
		rule.UserID, rule.Name, conditions, actions, rule.IsActive, schedule,
	).Scan(&rule.ID)
}

// ListByUser returns all cleanup rules for a user.
func (r *RuleRepository) ListByUser(ctx context.Context, userID int) ([]model.CleanupRule, error) {
	query := `
        SELECT id, user_id, name, conditions, actions, is_active, schedule, created_at
        FROM cleanup_rules
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []model.CleanupRule{}

	for rows.Next() {
		var rule model.CleanupRule
		var conditions, actions, schedule []byte
		err := rows.Scan(
			&rule.ID, &rule.UserID, &rule.Name, &conditions, &actions,
			&rule.IsActive, &schedule, &rule.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(conditions, &rule.Conditions); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(actions, &rule.Actions); err != nil {
			return nil, err
		}
		if len(schedule) > 0 {
			rule.Schedule = &model.CleanupSchedule{}
			if err := json.Unmarshal(schedule, rule.Schedule); err != nil {
				return nil, err
			}
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// SetActive toggles a rule on or off.
func (r *RuleRepository) SetActive(ctx context.Context, userID, ruleID int, active bool) error {
	query := `
        UPDATE cleanup_rules
        SET is_active = $1
        WHERE id = $2 AND user_id = $3
    `
	_, err := r.db.Exec(ctx, query, active, ruleID, userID)
	return err
}

// DeleteRule removes a rule owned by the user.
func (r *RuleRepository) DeleteRule(ctx context.Context, userID, ruleID int) error {
	query := `
        DELETE FROM cleanup_rules
        WHERE id = $1 AND user_id = $2
    `
	_, err := r.db.Exec(ctx, query, ruleID, userID)
	return err
}
