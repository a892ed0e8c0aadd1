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

type CreateCommentInput struct {
	CommentText string `json:"comment_text" validate:"required,max=1000"`
	PostID      uint   `json:"post_id" validate:"required"`
}

type CommentService struct {
	repo     *repository.Repository
	validate *Validator
	logger   *slog.Logger
}

func NewCommentService(repo *repository.Repository, validate *Validator, logger *slog.Logger) *CommentService {
	return &CommentService{repo: repo, validate: validate, logger: logger}
}

func (s *CommentService) List(ctx context.Context, filter repository.CommentFilter) ([]models.CommentView, error) {
	comments, err := s.repo.Comments.FindAll(ctx, filter)
	if err != nil {
		return nil, storeErr("list comments", "comments", err)
	}
	views := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, models.NewCommentView(&comments[i]))
	}
	return views, nil
}

func (s *CommentService) Create(ctx context.Context, authorID uint, in CreateCommentInput) (*models.CommentView, error) {
	if authorID == 0 {
		return nil, ErrUnauthenticated
	}
	in.CommentText = strings.TrimSpace(in.CommentText)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.repo.Users.FindByID(ctx, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, storeErr("find user", "user", err)
	}
	if _, err := s.repo.Posts.FindByID(ctx, in.PostID); err != nil {
		return nil, storeErr("find post", fmt.Sprintf("post %d", in.PostID), err)
	}

	comment := &models.Comment{CommentText: in.CommentText, PostID: in.PostID, UserID: authorID}
	if err := s.repo.Comments.Create(ctx, comment); err != nil {
		return nil, storeErr("create comment", "comment", err)
	}

	saved, err := s.repo.Comments.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, storeErr("find comment", fmt.Sprintf("comment %d", comment.ID), err)
	}
	view := models.NewCommentView(saved)
	return &view, nil
}

// Delete removes a comment written by actorID.
func (s *CommentService) Delete(ctx context.Context, actorID, id uint) error {
	if actorID == 0 {
		return ErrUnauthenticated
	}
	comment, err := s.repo.Comments.FindByID(ctx, id)
	if err != nil {
		return storeErr("find comment", fmt.Sprintf("comment %d", id), err)
	}
	if comment.UserID != actorID {
		return ErrForbidden
	}
	if err := s.repo.Comments.Delete(ctx, id); err != nil {
		return storeErr("delete comment", fmt.Sprintf("comment %d", id), err)
	}
	return nil
}
