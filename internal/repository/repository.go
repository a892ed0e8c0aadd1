package repository

import (
	"context"

	"technews/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error
}

// PostFilter narrows a post listing. Zero values mean no restriction.
type PostFilter struct {
	UserID uint
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id uint) (*models.Post, error)
	FindAll(ctx context.Context, filter PostFilter) ([]models.Post, error)
	UpdateTitle(ctx context.Context, id uint, title string) error
	Delete(ctx context.Context, id uint) error
}

// CommentFilter narrows a comment listing. Zero values mean no restriction.
type CommentFilter struct {
	UserID uint
	PostID uint
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id uint) (*models.Comment, error)
	FindAll(ctx context.Context, filter CommentFilter) ([]models.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type VoteRepository interface {
	// Insert reports false when the (user, post) pair already has a vote.
	Insert(ctx context.Context, vote *models.Vote) (bool, error)
	Exists(ctx context.Context, userID, postID uint) (bool, error)
	CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	FindVotedPosts(ctx context.Context, userID uint) ([]models.Post, error)
}

// Repository bundles the per-entity repositories over one store handle.
type Repository struct {
	Users    UserRepository
	Posts    PostRepository
	Comments CommentRepository
	Votes    VoteRepository
}

func New(db *gorm.DB) *Repository {
	return &Repository{
		Users:    NewUserRepository(db),
		Posts:    NewPostRepository(db),
		Comments: NewCommentRepository(db),
		Votes:    NewVoteRepository(db),
	}
}

// authorColumns keeps password hashes out of every preloaded author.
func authorColumns(tx *gorm.DB) *gorm.DB {
	return tx.Select("id", "username")
}
