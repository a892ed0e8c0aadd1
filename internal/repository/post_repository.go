package repository

import (
	"context"

	"technews/internal/models"

	"gorm.io/gorm"
)

type PostRepositoryImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{db: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit("User", "Comments").Create(post).Error
}

// withDetails preloads the author and the ordered comments with their authors.
func withDetails(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("User", authorColumns).
		Preload("Comments", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("comments.created_at ASC, comments.id ASC")
		}).
		Preload("Comments.User", authorColumns)
}

func (r *PostRepositoryImpl) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withDetails(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepositoryImpl) FindAll(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	query := withDetails(r.db.WithContext(ctx))
	if filter.UserID != 0 {
		query = query.Where("posts.user_id = ?", filter.UserID)
	}

	var posts []models.Post
	err := query.Order("posts.created_at DESC, posts.id ASC").Find(&posts).Error
	return posts, err
}

func (r *PostRepositoryImpl) UpdateTitle(ctx context.Context, id uint, title string) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("title", title)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the post and everything hanging off it in one transaction.
func (r *PostRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
