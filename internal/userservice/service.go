// Package userservice is the public boundary: account registration and
// login, plus PDF endpoints forwarded to the document service with the
// caller's bearer token.
package userservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/profilevault/internal/auth"
	"github.com/dmitrijs2005/profilevault/internal/common"
	"github.com/dmitrijs2005/profilevault/internal/dbx"
	"github.com/dmitrijs2005/profilevault/internal/models"
	"github.com/dmitrijs2005/profilevault/internal/repositories/repomanager"
)

// RegisterRequest is the body of POST /api/v1/user/register.
type RegisterRequest struct {
	Name           string `json:"name" validate:"required"`
	Surname        string `json:"surname" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	DateOfBirthday string `json:"date_of_birthday" validate:"required,datetime=2006-01-02"`
	Password       string `json:"password" validate:"required"`
}

// LoginRequest is the body of POST /api/v1/user/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Accounts registers users and exchanges credentials for access tokens.
type Accounts interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

// TokenIssuer issues access tokens.
type TokenIssuer interface {
	Issue(subjectID, email string, p auth.Profile, ttl time.Duration) (string, error)
}

// AccountService implements Accounts on the account database.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      TokenIssuer
	tokenTTL    time.Duration
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, h auth.PasswordHasher, t TokenIssuer, ttl time.Duration) *AccountService {
	return &AccountService{db: db, repomanager: m, hasher: h, tokens: t, tokenTTL: ttl}
}

// Register creates an inactive account. A taken email yields
// common.ErrorAlreadyExists.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	dob, err := time.Parse(time.DateOnly, req.DateOfBirthday)
	if err != nil {
		return nil, fmt.Errorf("%w: date_of_birthday: %v", common.ErrorValidation, err)
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:           req.Name,
		Surname:        req.Surname,
		Email:          req.Email,
		DateOfBirthday: dob,
		HashedPassword: hashed,
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if _, err := repo.GetByEmail(ctx, req.Email); err == nil {
			return common.ErrorAlreadyExists
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		var cerr error
		created, cerr = repo.Create(ctx, user)
		return cerr
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return created, nil
}

// Login verifies credentials and issues an access token carrying the
// profile fields. Unknown email and wrong password both yield
// common.ErrorUnauthorized.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	return s.tokens.Issue(user.ID, user.Email, auth.Profile{
		Name:           user.Name,
		Surname:        user.Surname,
		DateOfBirthday: user.DateOfBirthdayString(),
	}, s.tokenTTL)
}
