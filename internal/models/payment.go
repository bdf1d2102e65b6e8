package models

import (
	"time"

	"github.com/somlabs/agentstore/internal/lib/money"
)

// Статусы записи платежа. Запись создаётся только с терминальным статусом,
// промежуточного "pending" в этой схеме не существует.
const (
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment представляет одну запись в журнале платежей.
// Записи только добавляются и после создания не изменяются.
type Payment struct {
	ID            string      `json:"id"`
	UserUID       string      `json:"user_id"`
	PlanID        string      `json:"plan_id"`
	AgentIDs      []string    `json:"agent_ids"`
	Amount        money.Cents `json:"amount"` // Сумма, вычисленная сервером
	Status        string      `json:"status"`
	PaymentMethod string      `json:"payment_method"`
	TransactionID string      `json:"transaction_id"`
	CreatedAt     time.Time   `json:"created_at"`
}

// PaymentHistoryItem — запись истории платежей, дополненная названием плана
// для отображения.
type PaymentHistoryItem struct {
	ID            string      `json:"id"`
	Amount        money.Cents `json:"amount"`
	Status        string      `json:"status"`
	TransactionID string      `json:"transaction_id"`
	PlanName      string      `json:"plan_name"`
	AgentIDs      []string    `json:"agent_ids"`
	CreatedAt     time.Time   `json:"created_at"`
}

// CardDetails — платёжные реквизиты. Никогда не сохраняются и не логируются.
type CardDetails struct {
	CardNumber     string `json:"card_number" validate:"required"`
	ExpiryDate     string `json:"expiry_date" validate:"required"`
	CVV            string `json:"cvv" validate:"required"`
	CardholderName string `json:"cardholder_name" validate:"required,min=2,max=255"`
}

// PaymentNotification — сообщение для административного уведомления
// об успешном платеже. Публикуется в RabbitMQ после записи в журнал.
type PaymentNotification struct {
	UserName      string      `json:"user_name"`
	UserEmail     string      `json:"user_email"`
	AgentNames    []string    `json:"agent_names"`
	PlanName      string      `json:"plan_name"`
	Amount        money.Cents `json:"amount"`
	TransactionID string      `json:"transaction_id"`
}
