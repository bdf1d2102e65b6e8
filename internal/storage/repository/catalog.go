package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/somlabs/agentstore/internal/models"
)

// ListAgents возвращает весь каталог агентов, сгруппированный по категориям.
func (s *Storage) ListAgents(ctx context.Context) ([]*models.Agent, error) {
	const op = "storage.ListAgents"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, price_cents, category, features
			  FROM agents
			  ORDER BY category, name`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	agents, err := scanAgents(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return agents, nil
}

// ListAgentsByCategory возвращает агентов одной категории.
func (s *Storage) ListAgentsByCategory(ctx context.Context, category string) ([]*models.Agent, error) {
	const op = "storage.ListAgentsByCategory"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, price_cents, category, features
			  FROM agents
			  WHERE category = $1
			  ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	agents, err := scanAgents(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return agents, nil
}

// GetAgent возвращает агента по идентификатору или ErrNotFound.
func (s *Storage) GetAgent(ctx context.Context, id string) (*models.Agent, error) {
	const op = "storage.GetAgent"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, price_cents, category, features
			  FROM agents
			  WHERE id = $1`
	var a models.Agent
	var features []byte
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Name, &a.Description, &a.Price, &a.Category, &features)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(features, &a.Features); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &a, nil
}

// FindAgentsByIDs возвращает агентов по набору идентификаторов.
// Отсутствующие идентификаторы просто не попадают в результат,
// покупатель сверяет количество сам.
func (s *Storage) FindAgentsByIDs(ctx context.Context, ids []string) ([]*models.Agent, error) {
	const op = "storage.FindAgentsByIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, name, description, price_cents, category, features
			  FROM agents
			  WHERE id IN (%s)`, strings.Join(placeholders, ","))

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	agents, err := scanAgents(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return agents, nil
}

// ListPlans возвращает тарифные планы по возрастанию цены.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price_cents, period, description, features, agent_limit
			  FROM pricing_plans
			  ORDER BY price_cents ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		var p models.Plan
		var features []byte
		if err = rows.Scan(&p.ID, &p.Name, &p.Price, &p.Period,
			&p.Description, &features, &p.AgentLimit); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPlan возвращает тарифный план по идентификатору или ErrNotFound.
func (s *Storage) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price_cents, period, description, features, agent_limit
			  FROM pricing_plans
			  WHERE id = $1`
	var p models.Plan
	var features []byte
	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.Period, &p.Description, &features, &p.AgentLimit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(features, &p.Features); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

func scanAgents(rows *sql.Rows) ([]*models.Agent, error) {
	var result []*models.Agent
	for rows.Next() {
		var a models.Agent
		var features []byte
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.Price,
			&a.Category, &features); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(features, &a.Features); err != nil {
			return nil, err
		}
		result = append(result, &a)
	}
	return result, rows.Err()
}
