package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"technews/internal/models"
	"technews/internal/repository"

	"gorm.io/gorm"
)

type CreatePostInput struct {
	Title   string `json:"title" validate:"required,max=255"`
	PostURL string `json:"post_url" validate:"required,weburl"`
}

type UpdatePostInput struct {
	Title string `json:"title" validate:"required,max=255"`
}

// PostService is the read side for posts: every view it returns carries a
// vote count computed from the votes table in the same request.
type PostService struct {
	repo     *repository.Repository
	validate *Validator
	logger   *slog.Logger
}

func NewPostService(repo *repository.Repository, validate *Validator, logger *slog.Logger) *PostService {
	return &PostService{repo: repo, validate: validate, logger: logger}
}

// fillVoteCounts sets VoteCount on every post with one grouped query.
func fillVoteCounts(ctx context.Context, votes repository.VoteRepository, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	counts, err := votes.CountByPosts(ctx, ids)
	if err != nil {
		return storeErr("count votes", "votes", err)
	}
	for i := range posts {
		posts[i].VoteCount = counts[posts[i].ID]
	}
	return nil
}

func (s *PostService) List(ctx context.Context, filter repository.PostFilter) ([]models.PostView, error) {
	posts, err := s.repo.Posts.FindAll(ctx, filter)
	if err != nil {
		return nil, storeErr("list posts", "posts", err)
	}
	if err := fillVoteCounts(ctx, s.repo.Votes, posts); err != nil {
		return nil, err
	}

	views := make([]models.PostView, 0, len(posts))
	for i := range posts {
		views = append(views, models.NewPostView(&posts[i]))
	}
	return views, nil
}

func (s *PostService) Get(ctx context.Context, id uint) (*models.PostView, error) {
	if id == 0 {
		return nil, fmt.Errorf("post 0: %w", ErrNotFound)
	}
	post, err := s.repo.Posts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find post", fmt.Sprintf("post %d", id), err)
	}
	posts := []models.Post{*post}
	if err := fillVoteCounts(ctx, s.repo.Votes, posts); err != nil {
		return nil, err
	}
	view := models.NewPostView(&posts[0])
	return &view, nil
}

// Create stores a post owned by authorID, which comes from the session.
func (s *PostService) Create(ctx context.Context, authorID uint, in CreatePostInput) (*models.PostView, error) {
	if authorID == 0 {
		return nil, ErrUnauthenticated
	}
	in.Title = strings.TrimSpace(in.Title)
	in.PostURL = strings.TrimSpace(in.PostURL)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.repo.Users.FindByID(ctx, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, storeErr("find user", "user", err)
	}

	post := &models.Post{Title: in.Title, PostURL: in.PostURL, UserID: authorID}
	if err := s.repo.Posts.Create(ctx, post); err != nil {
		return nil, storeErr("create post", "post", err)
	}
	s.logger.Info("post created", "post_id", post.ID, "user_id", authorID)
	return s.Get(ctx, post.ID)
}

// authorize loads the post and checks that actorID wrote it.
func (s *PostService) authorize(ctx context.Context, actorID, postID uint) error {
	if actorID == 0 {
		return ErrUnauthenticated
	}
	post, err := s.repo.Posts.FindByID(ctx, postID)
	if err != nil {
		return storeErr("find post", fmt.Sprintf("post %d", postID), err)
	}
	if post.UserID != actorID {
		return ErrForbidden
	}
	return nil
}

// UpdateTitle changes only the title. The URL is fixed once posted.
func (s *PostService) UpdateTitle(ctx context.Context, actorID, postID uint, in UpdatePostInput) (*models.PostView, error) {
	if err := s.authorize(ctx, actorID, postID); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if err := s.repo.Posts.UpdateTitle(ctx, postID, in.Title); err != nil {
		return nil, storeErr("update post", fmt.Sprintf("post %d", postID), err)
	}
	return s.Get(ctx, postID)
}

// Delete removes the post with its votes and comments.
func (s *PostService) Delete(ctx context.Context, actorID, postID uint) error {
	if err := s.authorize(ctx, actorID, postID); err != nil {
		return err
	}
	if err := s.repo.Posts.Delete(ctx, postID); err != nil {
		return storeErr("delete post", fmt.Sprintf("post %d", postID), err)
	}
	s.logger.Info("post deleted", "post_id", postID, "user_id", actorID)
	return nil
}
