package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/somlabs/agentstore/internal/models"
)

// InsertPayment добавляет одну запись в журнал платежей и возвращает её ID.
// Журнал append-only: обновлений и удалений для этой таблицы нет.
func (s *Storage) InsertPayment(ctx context.Context, payment models.Payment) (string, error) {
	const op = "storage.InsertPayment"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	agentIDs, err := json.Marshal(payment.AgentIDs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO payments (user_uid, plan_id, agent_ids, amount_cents,
			      status, payment_method, transaction_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID string
	err = s.DB.QueryRowContext(ctx, query,
		payment.UserUID, payment.PlanID, agentIDs, payment.Amount,
		payment.Status, payment.PaymentMethod, payment.TransactionID).Scan(&newID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListPaymentsByUser возвращает историю платежей пользователя, новые сверху,
// с названием тарифного плана для отображения.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userUID string) ([]*models.PaymentHistoryItem, error) {
	const op = "storage.ListPaymentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT p.id, p.amount_cents, p.status, p.transaction_id,
			      pl.name AS plan_name, p.agent_ids, p.created_at
			  FROM payments p
			  JOIN pricing_plans pl ON p.plan_id = pl.id
			  WHERE p.user_uid = $1
			  ORDER BY p.created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PaymentHistoryItem
	for rows.Next() {
		var item models.PaymentHistoryItem
		var agentIDs []byte
		if err = rows.Scan(&item.ID, &item.Amount, &item.Status, &item.TransactionID,
			&item.PlanName, &agentIDs, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err = json.Unmarshal(agentIDs, &item.AgentIDs); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
