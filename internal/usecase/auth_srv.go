package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yamdb/internal/data/entity"
	"yamdb/internal/data/repository"
	"yamdb/internal/dto/request"
	"yamdb/internal/dto/response"
	"yamdb/internal/policy"
	"yamdb/pkg/mailer"
	"yamdb/pkg/token"
	"yamdb/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	confirmationSubject = "YaMDb confirmation code"
	deliveryWarning     = "confirmation email could not be delivered"
)

type AuthService interface {
	// Signup gets or creates the account and issues a fresh confirmation code, superseding any earlier one.
	Signup(ctx context.Context, req *request.SignupRequest) (*response.SignupResponse, error)
	// Token exchanges a confirmation code for an access token. Each code works once.
	Token(ctx context.Context, req *request.TokenRequest) (*response.TokenResponse, error)
}

type TokenIssuer interface {
	Issue(id token.Identity) (string, error)
}

type authService struct {
	repo      *repository.Repository
	mail      mailer.Mailer
	tokens    TokenIssuer
	validator *utils.Validator
	config    utils.ConfirmationConfig
	log       *zap.Logger

	hashCost int
	now      func() time.Time
}

func NewAuthService(
	repo *repository.Repository,
	mail mailer.Mailer,
	tokens TokenIssuer,
	validator *utils.Validator,
	config utils.ConfirmationConfig,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		mail:      mail,
		tokens:    tokens,
		validator: validator,
		config:    config,
		log:       log.With(zap.String("service", "auth")),
		hashCost:  bcrypt.DefaultCost,
		now:       time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, req *request.SignupRequest) (*response.SignupResponse, error) {
	if errs := s.validator.Struct(req); errs != nil {
		s.log.Warn("Signup validation failed", zap.Any("errors", errs))
		return nil, invalidInput(errs)
	}

	byName, err := s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	byEmail, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}

	// an existing account is reused only for its exact (username, email) pair
	user := byName
	if byName == nil || byName.Email != req.Email {
		fields := map[string]string{}
		if byName != nil {
			fields["username"] = "A user with that username already exists"
		}
		if byEmail != nil {
			fields["email"] = "A user with that email already exists"
		}
		if len(fields) > 0 {
			s.log.Warn("Signup conflict",
				zap.String("username", req.Username),
				zap.String("email", req.Email),
			)
			return nil, conflict("Username or email already taken", fields)
		}
	}

	allowed, err := s.repo.Throttle.Allow(ctx, req.Email, s.config.MaxPerWindow, s.config.Window())
	if err != nil {
		// throttle outage must not lock users out
		s.log.Warn("Signup throttle unavailable", zap.Error(err))
	} else if !allowed {
		return nil, fmt.Errorf("%w: too many confirmation codes requested, try again later", ErrTooManyRequests)
	}

	if user == nil {
		user, err = s.createAccount(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	code, err := s.issueCode(ctx, user)
	if err != nil {
		return nil, err
	}

	resp := &response.SignupResponse{
		Username: user.Username,
		Email:    user.Email,
	}

	body := fmt.Sprintf("Hello, %s!\n\nYour confirmation code: %s\n", user.Username, code)
	if err := s.mail.Send(ctx, user.Email, confirmationSubject, body); err != nil {
		s.log.Warn("Confirmation code issued but not delivered",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		resp.Warning = deliveryWarning
	}

	s.log.Info("Confirmation code issued",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return resp, nil
}

func (s *authService) createAccount(ctx context.Context, req *request.SignupRequest) (*entity.User, error) {
	now := s.now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username: req.Username,
		Email:    req.Email,
		Role:     policy.RoleUser,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent signup for the same username or email
			return nil, conflict("Username or email already taken", nil)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.log.Info("Account created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)
	return user, nil
}

func (s *authService) issueCode(ctx context.Context, user *entity.User) (string, error) {
	code, err := utils.GenerateConfirmationCode(s.config.Length)
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash confirmation code: %w", err)
	}

	now := s.now()
	record := &entity.ConfirmationCode{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(s.config.TTL()),
	}

	if err := s.repo.Code.Replace(ctx, record); err != nil {
		return "", fmt.Errorf("store confirmation code: %w", err)
	}

	return code, nil
}

func (s *authService) Token(ctx context.Context, req *request.TokenRequest) (*response.TokenResponse, error) {
	if errs := s.validator.Struct(req); errs != nil {
		s.log.Warn("Token validation failed", zap.Any("errors", errs))
		return nil, invalidInput(errs)
	}

	user, err := s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, notFound("User not found")
	}

	code, err := s.repo.Code.FindActive(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("find confirmation code: %w", err)
	}
	if code == nil || !code.Active(s.now()) {
		s.log.Warn("No active confirmation code", zap.String("user_id", user.ID.String()))
		return nil, invalidCode()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(code.CodeHash), []byte(req.ConfirmationCode)); err != nil {
		s.log.Warn("Confirmation code mismatch", zap.String("user_id", user.ID.String()))
		return nil, invalidCode()
	}

	consumed, err := s.repo.Code.Consume(ctx, code.ID)
	if err != nil {
		return nil, fmt.Errorf("consume confirmation code: %w", err)
	}
	if !consumed {
		// a concurrent exchange used it first
		return nil, invalidCode()
	}

	if !user.IsConfirmed {
		user.IsConfirmed = true
		user.UpdatedAt = s.now()
		if err := s.repo.User.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("confirm account: %w", err)
		}
	}

	signed, err := s.tokens.Issue(token.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.Info("Token issued", zap.String("user_id", user.ID.String()))

	return &response.TokenResponse{Token: signed}, nil
}
