// Package models содержит доменные структуры магазина агентов:
// пользователи, каталожные позиции (агенты и тарифные планы) и платежи.
package models

import "time"

// User представляет зарегистрированного пользователя магазина.
// PasswordHash никогда не покидает границу хранилища и сервиса аутентификации.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Name         string    // Имя пользователя
	Email        string    // Электронная почта (уникальная)
	PasswordHash string    // bcrypt-хэш пароля
	CreatedAt    time.Time // Дата регистрации
}

// AuthUser представляет пользователя, разрешённого из токена.
// Эта структура попадает в контекст запроса и отдаётся наружу,
// хэш пароля в ней отсутствует намеренно.
type AuthUser struct {
	UID   string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
