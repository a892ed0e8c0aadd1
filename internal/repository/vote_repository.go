package repository

import (
	"context"

	"technews/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteRepositoryImpl struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepositoryImpl {
	return &VoteRepositoryImpl{db: db}
}

// Insert is a single constrained write. Concurrent inserts for the same pair
// race on idx_vote_user_post; exactly one of them affects a row.
func (r *VoteRepositoryImpl) Insert(ctx context.Context, vote *models.Vote) (bool, error) {
	res := r.db.WithContext(ctx).
		Omit("User", "Post").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(vote)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *VoteRepositoryImpl) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// CountByPosts returns the vote count per post id. Posts without votes map to 0.
func (r *VoteRepositoryImpl) CountByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PostID uint
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, id := range postIDs {
		counts[id] = 0
	}
	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}

// FindVotedPosts returns id and title of every post the user upvoted, oldest vote first.
func (r *VoteRepositoryImpl) FindVotedPosts(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Select("posts.id", "posts.title").
		Joins("JOIN votes ON votes.post_id = posts.id").
		Where("votes.user_id = ?", userID).
		Order("votes.id ASC").
		Find(&posts).Error
	return posts, err
}
