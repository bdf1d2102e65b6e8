// Package gateway реализует симулируемый платёжный шлюз.
//
// Это место для подключения реального эквайринга: интерфейс Charger
// повторяет контракт сетевого вызова (контекст, реквизиты, сумма),
// а Simulated лишь проверяет формат карты и выдаёт идентификатор транзакции.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/somlabs/agentstore/internal/lib/money"
	"github.com/somlabs/agentstore/internal/models"
)

// ErrInvalidInstrument возвращается при непроходящих проверку реквизитах карты.
var ErrInvalidInstrument = errors.New("invalid payment instrument")

// Charger описывает контракт платёжного шлюза.
type Charger interface {
	// Charge списывает сумму и возвращает уникальный идентификатор транзакции.
	Charge(ctx context.Context, card models.CardDetails, amount money.Cents) (string, error)
}

// Simulated — шлюз-заглушка: валидирует реквизиты, имитирует сетевую
// задержку и всегда одобряет корректно оформленный платёж.
type Simulated struct {
	delay time.Duration
}

// NewSimulated создаёт шлюз с заданной задержкой обработки.
func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{delay: delay}
}

// Charge проверяет реквизиты и выдаёт идентификатор транзакции.
// Номер карты — ровно 16 цифр, CVV — 3 или 4 цифры.
func (g *Simulated) Charge(ctx context.Context, card models.CardDetails, amount money.Cents) (string, error) {
	const op = "gateway.Charge"

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	case <-time.After(g.delay):
	}

	if !isDigits(card.CardNumber) || len(card.CardNumber) != 16 {
		return "", fmt.Errorf("%s: invalid card number: %w", op, ErrInvalidInstrument)
	}
	if !isDigits(card.CVV) || len(card.CVV) < 3 || len(card.CVV) > 4 {
		return "", fmt.Errorf("%s: invalid cvv: %w", op, ErrInvalidInstrument)
	}
	if amount < 0 {
		return "", fmt.Errorf("%s: negative amount: %w", op, ErrInvalidInstrument)
	}

	return "txn_" + uuid.NewString(), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
