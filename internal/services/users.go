package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"technews/internal/models"
	"technews/internal/repository"
	"technews/internal/utils"

	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=4,max=72"`
}

// UpdateUserInput changes only the fields that are set.
type UpdateUserInput struct {
	Username *string `json:"username" validate:"omitnil,min=1,max=50"`
	Email    *string `json:"email" validate:"omitnil,email,max=255"`
	Password *string `json:"password" validate:"omitnil,min=4,max=72"`
}

type UserService struct {
	repo       *repository.Repository
	validate   *Validator
	bcryptCost int
	dummyHash  string
	logger     *slog.Logger
}

func NewUserService(repo *repository.Repository, validate *Validator, bcryptCost int, logger *slog.Logger) (*UserService, error) {
	// Compared against when the email is unknown, so both failure paths cost one bcrypt run.
	dummy, err := utils.HashPassword("technews-dummy-password", bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &UserService{
		repo:       repo,
		validate:   validate,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
		logger:     logger,
	}, nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, 0, &in.Username, &in.Email); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{Username: in.Username, Email: in.Email, Password: hash}
	if err := s.repo.Users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ValidationError{Fields: map[string]string{"email": "or username is already taken"}}
		}
		return nil, storeErr("create user", "user", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// checkUnique rejects a username or email already held by another user.
func (s *UserService) checkUnique(ctx context.Context, selfID uint, username, email *string) error {
	fields := map[string]string{}
	if username != nil {
		u, err := s.repo.Users.FindByUsername(ctx, *username)
		switch {
		case err == nil && u.ID != selfID:
			fields["username"] = "is already taken"
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return storeErr("find user by username", "user", err)
		}
	}
	if email != nil {
		u, err := s.repo.Users.FindByEmail(ctx, *email)
		switch {
		case err == nil && u.ID != selfID:
			fields["email"] = "is already registered"
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return storeErr("find user by email", "user", err)
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Authenticate returns ErrInvalidCredentials for an unknown email and a
// wrong password alike.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CheckPasswordHash(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, storeErr("find user by email", "user", err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.UserView, error) {
	users, err := s.repo.Users.FindAll(ctx)
	if err != nil {
		return nil, storeErr("list users", "users", err)
	}
	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, models.NewUserView(&users[i]))
	}
	return views, nil
}

// Exists reports whether id still names a user.
func (s *UserService) Exists(ctx context.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	_, err := s.repo.Users.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("find user", "user", err)
	}
	return true, nil
}

// Get returns the user with their posts, comments and upvoted posts.
func (s *UserService) Get(ctx context.Context, id uint) (*models.UserDetailView, error) {
	user, err := s.repo.Users.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find user", fmt.Sprintf("user %d", id), err)
	}

	posts, err := s.repo.Posts.FindAll(ctx, repository.PostFilter{UserID: id})
	if err != nil {
		return nil, storeErr("list user posts", "posts", err)
	}
	if err := fillVoteCounts(ctx, s.repo.Votes, posts); err != nil {
		return nil, err
	}

	comments, err := s.repo.Comments.FindAll(ctx, repository.CommentFilter{UserID: id})
	if err != nil {
		return nil, storeErr("list user comments", "comments", err)
	}

	voted, err := s.repo.Votes.FindVotedPosts(ctx, id)
	if err != nil {
		return nil, storeErr("list voted posts", "posts", err)
	}

	view := &models.UserDetailView{
		UserView:   models.NewUserView(user),
		Posts:      make([]models.PostView, 0, len(posts)),
		Comments:   make([]models.CommentView, 0, len(comments)),
		VotedPosts: make([]models.PostRef, 0, len(voted)),
	}
	for i := range posts {
		view.Posts = append(view.Posts, models.NewPostView(&posts[i]))
	}
	for i := range comments {
		view.Comments = append(view.Comments, models.NewCommentView(&comments[i]))
	}
	for _, p := range voted {
		view.VotedPosts = append(view.VotedPosts, models.PostRef{ID: p.ID, Title: p.Title})
	}
	return view, nil
}

// Update changes the caller's own account. Editing anyone else is ErrForbidden.
func (s *UserService) Update(ctx context.Context, actorID, id uint, in UpdateUserInput) (*models.User, error) {
	if actorID == 0 {
		return nil, ErrUnauthenticated
	}
	if _, err := s.repo.Users.FindByID(ctx, id); err != nil {
		return nil, storeErr("find user", fmt.Sprintf("user %d", id), err)
	}
	if actorID != id {
		return nil, ErrForbidden
	}

	if in.Username != nil {
		v := strings.TrimSpace(*in.Username)
		in.Username = &v
	}
	if in.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &v
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, id, in.Username, in.Email); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Username != nil {
		fields["username"] = *in.Username
	}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields["password"] = hash
	}
	if len(fields) > 0 {
		if err := s.repo.Users.Update(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, &ValidationError{Fields: map[string]string{"email": "or username is already taken"}}
			}
			return nil, storeErr("update user", fmt.Sprintf("user %d", id), err)
		}
	}

	user, err := s.repo.Users.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find user", fmt.Sprintf("user %d", id), err)
	}
	return user, nil
}

// Delete removes the caller's own account and all of its content.
func (s *UserService) Delete(ctx context.Context, actorID, id uint) error {
	if actorID == 0 {
		return ErrUnauthenticated
	}
	if _, err := s.repo.Users.FindByID(ctx, id); err != nil {
		return storeErr("find user", fmt.Sprintf("user %d", id), err)
	}
	if actorID != id {
		return ErrForbidden
	}
	if err := s.repo.Users.Delete(ctx, id); err != nil {
		return storeErr("delete user", fmt.Sprintf("user %d", id), err)
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
