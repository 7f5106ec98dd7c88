package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/medimate/internal/common"
	"github.com/dmitrijs2005/medimate/internal/cryptox"
	"github.com/dmitrijs2005/medimate/internal/dbx"
	"github.com/dmitrijs2005/medimate/internal/logging"
	"github.com/dmitrijs2005/medimate/internal/server/auth"
	"github.com/dmitrijs2005/medimate/internal/server/config"
	"github.com/dmitrijs2005/medimate/internal/server/models"
	"github.com/dmitrijs2005/medimate/internal/server/repositories/repomanager"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  *models.User
}

// UserService handles registration, login and profile lookup.
type UserService struct {
	db            dbx.DBTX
	repomanager   repomanager.RepositoryManager
	hasher        *cryptox.PasswordHasher
	jwtSecret     []byte
	tokenValidity time.Duration
	log           logging.Logger
}

func NewUserService(db dbx.DBTX, m repomanager.RepositoryManager, hasher *cryptox.PasswordHasher,
	cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		hasher:        hasher,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		log:           logger.With("module", "users"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and signs a token for it.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, common.NewPublicError(common.ErrValidation, "Name, email, and password are required.", nil)
	}
	if len(password) > maxPasswordBytes {
		return nil, common.NewPublicError(common.ErrValidation, "Password must be at most 72 bytes.", nil)
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetUserByEmail(ctx, email); err == nil {
		return nil, common.NewPublicError(common.ErrAlreadyExists, "Email already exists", nil)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.NewPublicError(common.ErrAlreadyExists, "Email already exists", nil)
		}
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return &AuthResult{Token: token, User: user}, nil
}

// Login checks the credentials. Unknown email and wrong password produce
// the same error after the same amount of bcrypt work.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.NewPublicError(common.ErrValidation, "Email and password are required", nil)
	}

	invalid := common.NewPublicError(common.ErrInvalidCredentials, "Invalid credentials", nil)

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.hasher.CompareDummy(password)
			return nil, invalid
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			return nil, invalid
		}
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewPublicError(common.ErrorNotFound, "User not found", nil)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) issueToken(u *models.User) (string, error) {
	return auth.GenerateToken(auth.Identity{UserID: u.ID, Name: u.Name, Email: u.Email}, s.jwtSecret, s.tokenValidity)
}
