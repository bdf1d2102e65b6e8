// Package jwt реализует выпуск и проверку сессионных токенов магазина.
//
// Токен — самодостаточный подписанный credential с идентификатором
// пользователя и email; на сервере он не хранится. Maker определяет
// интерфейс для выпуска и разбора токенов, MakerImpl — реализация
// на секретном ключе с настраиваемым сроком жизни.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для выпуска и разбора сессионных токенов.
type Maker interface {
	// IssueToken выпускает подписанный токен для пользователя.
	IssueToken(userUID, email string) (string, error)
	// ParseToken проверяет подпись и срок действия, возвращает claims.
	ParseToken(tokenStr string) (*SessionClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
// Ключ передаётся явно при конструировании, глобального состояния нет.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
