// Package auth содержит бизнес-логику регистрации, входа и проверки
// сессионных токенов.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/somlabs/agentstore/internal/lib/jwt"
	"github.com/somlabs/agentstore/internal/lib/password"
	"github.com/somlabs/agentstore/internal/models"
	"github.com/somlabs/agentstore/internal/storage/repository"
)

// Ошибки аутентификации. Обработчики переводят их в HTTP-статусы,
// не раскрывая клиенту, какая именно проверка токена не прошла.
var (
	// ErrEmailTaken — пользователь с таким email уже зарегистрирован.
	ErrEmailTaken = errors.New("user already exists with this email")
	// ErrInvalidCredentials — пара email/пароль не подходит.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken — подпись неверна или срок действия истёк.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUserNotFound — субъект токена больше не существует.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByEmail возвращает пользователя по email или repository.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByUID возвращает пользователя по UID или repository.ErrNotFound.
	GetUserByUID(ctx context.Context, userUID string) (*models.User, error)
}

// Service отвечает за регистрацию, вход и валидацию сессионных токенов.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewService создает новый экземпляр Service.
func NewService(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя и сразу выпускает для него токен.
// Пароль хэшируется bcrypt; сбой хэширования — внутренняя ошибка,
// а не ошибка валидации.
func (s *Service) Register(ctx context.Context, name, email, rawPassword string) (*models.AuthUser, string, error) {
	const op = "auth.Register"

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, "", ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.Hash(rawPassword)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	uid, err := s.users.RegisterUser(ctx, models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
	})
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.IssueToken(uid, email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return &models.AuthUser{UID: uid, Name: name, Email: email}, token, nil
}

// Login проверяет пароль пользователя и выпускает сессионный токен.
// Несуществующий email и неверный пароль неразличимы для клиента.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*models.AuthUser, string, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.Compare(user.PasswordHash, rawPassword); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtMaker.IssueToken(user.UID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	return &models.AuthUser{UID: user.UID, Name: user.Name, Email: user.Email}, token, nil
}

// Authenticate выполняет полную проверку токена: подпись, срок действия
// и существование субъекта. Повторная проверка субъекта в базе заменяет
// список отзыва: токены удалённого пользователя перестают работать сами.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.AuthUser, error) {
	const op = "auth.Authenticate"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	user, err := s.users.GetUserByUID(ctx, claims.UserUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.AuthUser{UID: user.UID, Name: user.Name, Email: user.Email}, nil
}
