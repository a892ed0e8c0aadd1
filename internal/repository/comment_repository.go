package repository

import (
	"context"

	"technews/internal/models"

	"gorm.io/gorm"
)

type CommentRepositoryImpl struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepositoryImpl {
	return &CommentRepositoryImpl{db: db}
}

func (r *CommentRepositoryImpl) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("User", "Post").Create(comment).Error
}

func (r *CommentRepositoryImpl) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("User", authorColumns).
		Preload("Post", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "title") }).
		First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepositoryImpl) FindAll(ctx context.Context, filter CommentFilter) ([]models.Comment, error) {
	query := r.db.WithContext(ctx).
		Preload("User", authorColumns).
		Preload("Post", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "title") })
	if filter.UserID != 0 {
		query = query.Where("comments.user_id = ?", filter.UserID)
	}
	if filter.PostID != 0 {
		query = query.Where("comments.post_id = ?", filter.PostID)
	}

	var comments []models.Comment
	err := query.Order("comments.created_at ASC, comments.id ASC").Find(&comments).Error
	return comments, err
}

func (r *CommentRepositoryImpl) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
