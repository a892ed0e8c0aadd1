package services

import (
	"context"
	"log/slog"
	"testing"

	"technews/internal/db/dbtest"
	"technews/internal/models"
	"technews/internal/repository"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type env struct {
	ctx      context.Context
	repo     *repository.Repository
	users    *UserService
	posts    *PostService
	comments *CommentService
	votes    *VoteService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	repo := repository.New(dbtest.New(t))
	logger := slog.New(slog.DiscardHandler)
	validate := NewValidator()

	users, err := NewUserService(repo, validate, bcrypt.MinCost, logger)
	require.NoError(t, err)

	return &env{
		ctx:      context.Background(),
		repo:     repo,
		users:    users,
		posts:    NewPostService(repo, validate, logger),
		comments: NewCommentService(repo, validate, logger),
		votes:    NewVoteService(repo, logger),
	}
}

func (e *env) register(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.Register(e.ctx, RegisterInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func (e *env) post(t *testing.T, author *models.User, title string) *models.PostView {
	t.Helper()
	p, err := e.posts.Create(e.ctx, author.ID, CreatePostInput{Title: title, PostURL: "https://example.com/" + title})
	require.NoError(t, err)
	return p
}
