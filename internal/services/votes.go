package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"technews/internal/metrics"
	"technews/internal/models"
	"technews/internal/repository"

	"gorm.io/gorm"
)

// VoteService records upvotes. At most one vote per (user, post) is ever
// stored; the store's unique index decides, not a prior read.
type VoteService struct {
	repo   *repository.Repository
	logger *slog.Logger
}

func NewVoteService(repo *repository.Repository, logger *slog.Logger) *VoteService {
	return &VoteService{repo: repo, logger: logger}
}

// Cast records one upvote by userID on postID.
//
// Errors: ErrUnauthenticated when userID is zero or no longer exists,
// *ValidationError when postID is zero, ErrNotFound for an unknown post,
// ErrDuplicateVote when the user already voted, *StoreError otherwise.
func (s *VoteService) Cast(ctx context.Context, userID, postID uint) (*models.Vote, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	if postID == 0 {
		return nil, newValidationError("post_id", "is required")
	}

	if _, err := s.repo.Users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, s.fail(userID, postID, storeErr("find user", "user", err))
	}
	if _, err := s.repo.Posts.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.VotesTotal.WithLabelValues(metrics.VoteNotFound).Inc()
			return nil, fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}
		return nil, s.fail(userID, postID, storeErr("find post", "post", err))
	}

	vote := &models.Vote{UserID: userID, PostID: postID}
	inserted, err := s.repo.Votes.Insert(ctx, vote)
	if err != nil {
		// The post can vanish between the lookup and the insert.
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			metrics.VotesTotal.WithLabelValues(metrics.VoteNotFound).Inc()
			return nil, fmt.Errorf("post %d: %w", postID, ErrNotFound)
		}
		return nil, s.fail(userID, postID, &StoreError{Op: "insert vote", Err: err})
	}
	if !inserted {
		metrics.VotesTotal.WithLabelValues(metrics.VoteDuplicate).Inc()
		return nil, ErrDuplicateVote
	}

	metrics.VotesTotal.WithLabelValues(metrics.VoteCast).Inc()
	s.logger.Info("vote cast", "user_id", userID, "post_id", postID)
	return vote, nil
}

func (s *VoteService) fail(userID, postID uint, err error) error {
	metrics.VotesTotal.WithLabelValues(metrics.VoteError).Inc()
	s.logger.Error("vote failed", "user_id", userID, "post_id", postID, "error", err)
	return err
}

func (s *VoteService) HasVoted(ctx context.Context, userID, postID uint) (bool, error) {
	if userID == 0 || postID == 0 {
		return false, nil
	}
	ok, err := s.repo.Votes.Exists(ctx, userID, postID)
	if err != nil {
		return false, &StoreError{Op: "check vote", Err: err}
	}
	return ok, nil
}
