// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// Hash создает bcrypt-хеш пароля для безопасного хранения.
// Compare сверяет сохранённый bcrypt-хеш с введённым паролем.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost — стоимость bcrypt. Значение 12 унаследовано от продакшен-настройки
// и намеренно выше bcrypt.DefaultCost.
const Cost = 12

// Hash принимает пароль пользователя и возвращает его bcrypt-хэш.
// Сам пароль и хэш никогда не логируются.
func Hash(plaintext string) (string, error) {
	const op = "password.Hash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Compare сравнивает bcrypt-хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, иначе — ошибку.
func Compare(originalHash, plaintext string) error {
	const op = "password.Compare"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(plaintext)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
