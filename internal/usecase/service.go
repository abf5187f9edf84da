package usecase

import (
	"yamdb/internal/data/repository"
	"yamdb/pkg/mailer"
	"yamdb/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	User     UserService
	Category TaxonomyService
	Genre    TaxonomyService
	Title    TitleService
	Review   ReviewService
	Comment  CommentService
}

func NewService(
	repo *repository.Repository,
	mail mailer.Mailer,
	tokens TokenIssuer,
	validator *utils.Validator,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:     NewAuthService(repo, mail, tokens, validator, config.Confirmation, log),
		User:     NewUserService(repo.User, validator, log),
		Category: NewCategoryService(repo.Category, validator, log),
		Genre:    NewGenreService(repo.Genre, validator, log),
		Title:    NewTitleService(repo, validator, log),
		Review:   NewReviewService(repo, validator, log),
		Comment:  NewCommentService(repo, validator, log),
	}
}
