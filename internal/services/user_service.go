package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/despesas-be/internal/auth"
	"github.com/isdelr/despesas-be/internal/database"
	"github.com/isdelr/despesas-be/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(ctx context.Context, name, email, password string) (models.Account, error)
	AuthenticateUser(ctx context.Context, email, password string) (models.Account, error)
	GetUserByID(ctx context.Context, id string) (models.Account, error)
}

// UserService provides business logic for account management.
type UserService struct {
	db     *sql.DB
	hasher *auth.PasswordHasher

	// dummyHash is compared against on unknown-email logins so they cost the
	// same single bcrypt comparison as a wrong password.
	dummyHash string
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, hasher *auth.PasswordHasher) *UserService {
	dummy, err := hasher.Hash(uuid.New().String())
	if err != nil {
		// A uuid is far below bcrypt's input limit; this only fails on a broken hasher.
		panic(fmt.Sprintf("build dummy password hash: %v", err))
	}
	return &UserService{db: db, hasher: hasher, dummyHash: dummy}
}

// CreateUser creates a new account, hashing its password.
func (s *UserService) CreateUser(ctx context.Context, name, email, password string) (models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Account{}, &models.ValidationError{Field: "name", Message: "O nome é obrigatório"}
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return models.Account{}, err
	}
	if password == "" {
		return models.Account{}, &models.ValidationError{Field: "password", Message: "A senha é obrigatória"}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if auth.IsPasswordTooLong(err) {
			return models.Account{}, &models.ValidationError{Field: "password", Message: "A senha é longa demais"}
		}
		return models.Account{}, err
	}

	account := models.Account{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO accounts (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		account.ID, account.Name, account.Email, account.PasswordHash, database.FormatTime(account.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Account{}, ErrDuplicateEmail
		}
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}

	// Return user without password hash
	account.PasswordHash = ""
	return account, nil
}

// AuthenticateUser verifies an account's credentials. Unknown emails and
// wrong passwords both return ErrInvalidCredentials, and both pay for one
// bcrypt comparison.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (models.Account, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	account, err := s.getUserByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return models.Account{}, ErrInvalidCredentials
		}
		return models.Account{}, err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return models.Account{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	account.PasswordHash = ""
	return account, nil
}

// GetUserByID retrieves a single account by its ID, without the password hash.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, email, created_at FROM accounts WHERE id = ?", id)
	var account models.Account
	var createdAt string
	if err := row.Scan(&account.ID, &account.Name, &account.Email, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, fmt.Errorf("account %s: %w", id, ErrNotFound)
		}
		return models.Account{}, err
	}
	var err error
	if account.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return models.Account{}, err
	}
	return account, nil
}

// getUserByEmail retrieves a single account by email, including the password hash.
func (s *UserService) getUserByEmail(ctx context.Context, email string) (models.Account, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, email, password_hash FROM accounts WHERE email = ?", email)
	var account models.Account
	if err := row.Scan(&account.ID, &account.Name, &account.Email, &account.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, err
	}
	return account, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", &models.ValidationError{Field: "email", Message: "Email inválido"}
	}
	return email, nil
}
