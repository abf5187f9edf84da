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
	"yamdb/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	// Admin endpoints
	List(ctx context.Context, actor policy.Actor, q request.ListQuery) (*response.PaginatedResponse[response.UserResponse], error)
	Create(ctx context.Context, actor policy.Actor, req *request.CreateUserRequest) (*response.UserResponse, error)
	Get(ctx context.Context, actor policy.Actor, username string) (*response.UserResponse, error)
	Update(ctx context.Context, actor policy.Actor, username string, req *request.UpdateUserRequest) (*response.UserResponse, error)
	Delete(ctx context.Context, actor policy.Actor, username string) error

	// Own profile
	Me(ctx context.Context, actor policy.Actor) (*response.UserResponse, error)
	UpdateMe(ctx context.Context, actor policy.Actor, req *request.UpdateUserRequest) (*response.UserResponse, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *utils.Validator
	log       *zap.Logger
	now       func() time.Time
}

func NewUserService(repo repository.UserRepository, validator *utils.Validator, log *zap.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		log:       log.With(zap.String("service", "user")),
		now:       time.Now,
	}
}

var userAdmin = policy.Resource{Kind: policy.KindUser}

func (s *userService) List(ctx context.Context, actor policy.Actor, q request.ListQuery) (*response.PaginatedResponse[response.UserResponse], error) {
	if err := policy.Check(actor, policy.ActionRead, userAdmin); err != nil {
		return nil, err
	}

	q = q.Normalize()
	params := repository.ListParams{Limit: q.Limit, Offset: q.Offset, Search: q.Search}

	users, err := s.repo.FindAll(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	total, err := s.repo.Count(ctx, q.Search)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	results := make([]response.UserResponse, 0, len(users))
	for _, user := range users {
		results = append(results, response.UserToResponse(user))
	}

	return response.NewPaginatedResponse(results, total, q.Limit, q.Offset), nil
}

func (s *userService) Create(ctx context.Context, actor policy.Actor, req *request.CreateUserRequest) (*response.UserResponse, error) {
	if err := policy.Check(actor, policy.ActionCreate, userAdmin); err != nil {
		return nil, err
	}

	if errs := s.validator.Struct(req); errs != nil {
		s.log.Warn("Create user validation failed", zap.Any("errors", errs))
		return nil, invalidInput(errs)
	}

	role := policy.RoleUser
	if req.Role != "" {
		role = policy.Role(req.Role)
	}

	now := s.now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:  req.Username,
		Email:     req.Email,
		Role:      role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateUser(err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("User created by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("admin_id", actor.ID.String()),
	)

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *userService) Get(ctx context.Context, actor policy.Actor, username string) (*response.UserResponse, error) {
	if err := policy.Check(actor, policy.ActionRead, userAdmin); err != nil {
		return nil, err
	}

	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, actor policy.Actor, username string, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	if err := policy.Check(actor, policy.ActionUpdate, userAdmin); err != nil {
		return nil, err
	}

	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, user, req)
}

func (s *userService) Delete(ctx context.Context, actor policy.Actor, username string) error {
	if err := policy.Check(actor, policy.ActionDelete, userAdmin); err != nil {
		return err
	}

	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("User not found")
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info("User deleted by admin",
		zap.String("user_id", user.ID.String()),
		zap.String("admin_id", actor.ID.String()),
	)
	return nil
}

func (s *userService) Me(ctx context.Context, actor policy.Actor) (*response.UserResponse, error) {
	if err := policy.Check(actor, policy.ActionRead, policy.Resource{Kind: policy.KindProfile, OwnerID: actor.ID}); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	if user == nil {
		return nil, notFound("User not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// UpdateMe never changes the caller's role; a role in the request is dropped.
func (s *userService) UpdateMe(ctx context.Context, actor policy.Actor, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	if err := policy.Check(actor, policy.ActionUpdate, policy.Resource{Kind: policy.KindProfile, OwnerID: actor.ID}); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	if user == nil {
		return nil, notFound("User not found")
	}

	selfReq := *req
	selfReq.Role = nil

	return s.apply(ctx, user, &selfReq)
}

func (s *userService) apply(ctx context.Context, user *entity.User, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	if errs := s.validator.Struct(req); errs != nil {
		s.log.Warn("Update user validation failed", zap.Any("errors", errs))
		return nil, invalidInput(errs)
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Role != nil {
		user.Role = policy.Role(*req.Role)
	}
	user.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, duplicateUser(err)
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFound("User not found")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.log.Info("User updated", zap.String("user_id", user.ID.String()))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *userService) findByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, notFound("User not found")
	}
	return user, nil
}

func duplicateUser(err error) error {
	field := "username"
	var dup *repository.DuplicateError
	if errors.As(err, &dup) && dup.Constraint == "users_email_key" {
		field = "email"
	}
	return conflict("User already exists", map[string]string{
		field: fmt.Sprintf("A user with that %s already exists", field),
	})
}
