package models

import "github.com/somlabs/agentstore/internal/lib/money"

// Agent представляет покупаемого AI-агента из каталога.
// Каталог для этого сервиса — справочные данные только для чтения.
type Agent struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       money.Cents `json:"price"` // Цена в центах, в JSON — десятичное число
	Category    string      `json:"category"`
	Features    []string    `json:"features"`
}

// Plan представляет тарифный план подписки.
type Plan struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Price       money.Cents `json:"price"`
	Period      string      `json:"period"` // "forever", "per month", "per year"
	Description string      `json:"description"`
	Features    []string    `json:"features"`
	AgentLimit  int         `json:"agent_limit"` // -1 означает без ограничений
}
