// Package users implements account signup, login and lookup on top of the
// user store.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopcore/storefront/internal/apperr"
	"github.com/shopcore/storefront/internal/auth"
	"github.com/shopcore/storefront/internal/domain/user"
	"github.com/shopcore/storefront/internal/metrics"
	"github.com/shopcore/storefront/internal/storage"
	"github.com/shopcore/storefront/internal/storage/table"
	"github.com/shopcore/storefront/pkg/logger"
)

// SignUpInput is the validated signup payload.
type SignUpInput struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// BatchFailure records why one entry of a batch signup was rejected.
type BatchFailure struct {
	Reason string      `json:"reason"`
	Input  SignUpInput `json:"user"`
}

// BatchResult partitions a batch signup into inserted users and failures.
type BatchResult struct {
	InsertedCount int            `json:"insertedCount"`
	ErrorCount    int            `json:"errorCount"`
	Inserted      []user.User    `json:"insertedUsers"`
	Failed        []BatchFailure `json:"errorUsers"`
}

// Option configures the service.
type Option func(*Service)

// WithHashCost overrides the bcrypt cost (0 keeps the bcrypt default).
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// Service manages user accounts.
type Service struct {
	store    storage.UserStore
	tokens   *auth.TokenIssuer
	hashCost int
	log      *logger.Logger
}

// New constructs a user service.
func New(store storage.UserStore, tokens *auth.TokenIssuer, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	s := &Service{store: store, tokens: tokens, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp creates an account and issues a token for it. The email pre-check is
// advisory: two concurrent signups can both pass it, so the store's unique
// constraint is mapped to the same conflict.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*user.User, string, error) {
	if err := validate(in); err != nil {
		return nil, "", err
	}

	existing, err := s.store.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, "", apperr.Conflict("there's a user with this email already")
	}

	hash, err := auth.HashPassword(in.Password, s.hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.Create(ctx, user.User{
		Firstname: in.Firstname,
		Lastname:  in.Lastname,
		Email:     in.Email,
		Password:  hash,
	})
	if err != nil {
		if errors.Is(err, table.ErrUniqueViolation) {
			return nil, "", apperr.Conflict("there's a user with this email already")
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}
	if created == nil {
		return nil, "", apperr.Internal("user was not created", nil)
	}

	token, err := s.tokens.Sign(*created)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	metrics.UserSignedUp()
	s.log.WithField("user_id", created.ID).Info("user signed up")
	return created, token, nil
}

// Login checks credentials and issues a token. An unknown email surfaces as
// not-found, a wrong password as a bad request, matching the route contract.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, "", apperr.NotFound("invalid credentials")
	}
	if !auth.CheckPassword(u.Password, password) {
		return nil, "", apperr.BadRequest("invalid credentials")
	}

	token, err := s.tokens.Sign(*u)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}
	return u, token, nil
}

// Get looks up one user by id.
func (s *Service) Get(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

// List returns all users without password hashes.
func (s *Service) List(ctx context.Context) ([]user.User, error) {
	return s.store.FindAll(ctx)
}

// CreateBatch inserts many users, partitioning per-entry failures instead of
// aborting the whole batch.
func (s *Service) CreateBatch(ctx context.Context, inputs []SignUpInput) (BatchResult, error) {
	result := BatchResult{Inserted: []user.User{}, Failed: []BatchFailure{}}

	for _, in := range inputs {
		u, _, err := s.SignUp(ctx, in)
		if err != nil {
			var e *apperr.Error
			if errors.As(err, &e) {
				result.Failed = append(result.Failed, BatchFailure{Reason: e.Message, Input: in})
				continue
			}
			return BatchResult{}, err
		}
		result.Inserted = append(result.Inserted, *u)
	}

	result.InsertedCount = len(result.Inserted)
	result.ErrorCount = len(result.Failed)
	return result, nil
}

func validate(in SignUpInput) error {
	if len(strings.TrimSpace(in.Firstname)) < 2 {
		return apperr.BadRequest("firstname must be at least 2 characters")
	}
	if len(strings.TrimSpace(in.Lastname)) < 2 {
		return apperr.BadRequest("lastname must be at least 2 characters")
	}
	if !strings.Contains(in.Email, "@") {
		return apperr.BadRequest("email is invalid")
	}
	if len(in.Password) < 8 {
		return apperr.BadRequest("password must be at least 8 characters")
	}
	return nil
}
