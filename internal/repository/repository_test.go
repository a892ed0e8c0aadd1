package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"technews/internal/db/dbtest"
	"technews/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	repo *Repository
	ctx  context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.New(t)
	return &fixture{db: gdb, repo: New(gdb), ctx: context.Background()}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Password: "$2a$04$hash"}
	require.NoError(t, f.repo.Users.Create(f.ctx, u))
	return u
}

func (f *fixture) post(t *testing.T, author *models.User, title string, createdAt time.Time) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, PostURL: "https://example.com/" + title, UserID: author.ID, CreatedAt: createdAt}
	require.NoError(t, f.repo.Posts.Create(f.ctx, p))
	return p
}

func (f *fixture) comment(t *testing.T, author *models.User, post *models.Post, text string, createdAt time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{CommentText: text, UserID: author.ID, PostID: post.ID, CreatedAt: createdAt}
	require.NoError(t, f.repo.Comments.Create(f.ctx, c))
	return c
}

func TestUserRepository_FindByEmailAndUsername(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada")

	got, err := f.repo.Users.FindByEmail(f.ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = f.repo.Users.FindByUsername(f.ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.repo.Users.FindByEmail(f.ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_FindAllOmitsPassword(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ada")
	f.user(t, "linus")

	users, err := f.repo.Users.FindAll(f.ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.Password)
	}
	assert.Equal(t, "ada", users[0].Username)
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	f := newFixture(t)
	err := f.repo.Users.Update(f.ctx, 42, map[string]any{"username": "ghost"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	ada := f.user(t, "ada")
	bob := f.user(t, "bob")
	adaPost := f.post(t, ada, "ada-post", now)
	bobPost := f.post(t, bob, "bob-post", now)

	f.comment(t, bob, adaPost, "bob on ada", now)
	f.comment(t, ada, bobPost, "ada on bob", now)
	_, err := f.repo.Votes.Insert(f.ctx, &models.Vote{UserID: bob.ID, PostID: adaPost.ID})
	require.NoError(t, err)
	_, err = f.repo.Votes.Insert(f.ctx, &models.Vote{UserID: ada.ID, PostID: bobPost.ID})
	require.NoError(t, err)

	require.NoError(t, f.repo.Users.Delete(f.ctx, ada.ID))

	_, err = f.repo.Users.FindByID(f.ctx, ada.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = f.repo.Posts.FindByID(f.ctx, adaPost.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	remaining, err := f.repo.Posts.FindByID(f.ctx, bobPost.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining.Comments)

	counts, err := f.repo.Votes.CountByPosts(f.ctx, []uint{bobPost.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts[bobPost.ID])

	assert.ErrorIs(t, f.repo.Users.Delete(f.ctx, ada.ID), gorm.ErrRecordNotFound)
}

func TestPostRepository_FindAllOrderingAndFilter(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ada := f.user(t, "ada")
	bob := f.user(t, "bob")

	older := f.post(t, ada, "older", base)
	newer := f.post(t, bob, "newer", base.Add(time.Hour))
	tieA := f.post(t, ada, "tie-a", base.Add(30*time.Minute))
	tieB := f.post(t, bob, "tie-b", base.Add(30*time.Minute))

	posts, err := f.repo.Posts.FindAll(f.ctx, PostFilter{})
	require.NoError(t, err)
	require.Len(t, posts, 4)
	ids := []uint{posts[0].ID, posts[1].ID, posts[2].ID, posts[3].ID}
	assert.Equal(t, []uint{newer.ID, tieA.ID, tieB.ID, older.ID}, ids)

	mine, err := f.repo.Posts.FindAll(f.ctx, PostFilter{UserID: ada.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, p := range mine {
		assert.Equal(t, ada.ID, p.UserID)
	}
}

func TestPostRepository_FindByIDPreloadsAuthorsWithoutPasswords(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ada := f.user(t, "ada")
	bob := f.user(t, "bob")
	post := f.post(t, ada, "hello", base)

	second := f.comment(t, ada, post, "second", base.Add(2*time.Minute))
	first := f.comment(t, bob, post, "first", base.Add(time.Minute))

	got, err := f.repo.Posts.FindByID(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", got.User.Username)
	assert.Empty(t, got.User.Password)

	require.Len(t, got.Comments, 2)
	assert.Equal(t, first.ID, got.Comments[0].ID)
	assert.Equal(t, second.ID, got.Comments[1].ID)
	assert.Equal(t, "bob", got.Comments[0].User.Username)
	assert.Empty(t, got.Comments[0].User.Password)
}

func TestPostRepository_UpdateTitleAndDelete(t *testing.T) {
	f := newFixture(t)
	ada := f.user(t, "ada")
	post := f.post(t, ada, "draft", time.Now())
	f.comment(t, ada, post, "note", time.Now())
	_, err := f.repo.Votes.Insert(f.ctx, &models.Vote{UserID: ada.ID, PostID: post.ID})
	require.NoError(t, err)

	require.NoError(t, f.repo.Posts.UpdateTitle(f.ctx, post.ID, "final"))
	got, err := f.repo.Posts.FindByID(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Equal(t, post.PostURL, got.PostURL)

	require.NoError(t, f.repo.Posts.Delete(f.ctx, post.ID))

	var votes, comments int64
	require.NoError(t, f.db.Model(&models.Vote{}).Count(&votes).Error)
	require.NoError(t, f.db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Zero(t, votes)
	assert.Zero(t, comments)

	assert.ErrorIs(t, f.repo.Posts.Delete(f.ctx, post.ID), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, f.repo.Posts.UpdateTitle(f.ctx, post.ID, "x"), gorm.ErrRecordNotFound)
}

func TestCommentRepository_FindAllFilters(t *testing.T) {
	f := newFixture(t)
	base := time.Now()
	ada := f.user(t, "ada")
	bob := f.user(t, "bob")
	p1 := f.post(t, ada, "one", base)
	p2 := f.post(t, ada, "two", base)
	f.comment(t, ada, p1, "a1", base)
	f.comment(t, bob, p1, "b1", base.Add(time.Second))
	f.comment(t, bob, p2, "b2", base.Add(2*time.Second))

	all, err := f.repo.Comments.FindAll(f.ctx, CommentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byBob, err := f.repo.Comments.FindAll(f.ctx, CommentFilter{UserID: bob.ID})
	require.NoError(t, err)
	require.Len(t, byBob, 2)
	assert.Equal(t, "one", byBob[0].Post.Title)
	assert.Equal(t, "bob", byBob[0].User.Username)

	onP2, err := f.repo.Comments.FindAll(f.ctx, CommentFilter{PostID: p2.ID})
	require.NoError(t, err)
	require.Len(t, onP2, 1)
	assert.Equal(t, "b2", onP2[0].CommentText)
}

func TestVoteRepository_InsertIsIdempotentPerPair(t *testing.T) {
	f := newFixture(t)
	ada := f.user(t, "ada")
	post := f.post(t, ada, "p", time.Now())

	first := &models.Vote{UserID: ada.ID, PostID: post.ID}
	inserted, err := f.repo.Votes.Insert(f.ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, first.ID)

	inserted, err = f.repo.Votes.Insert(f.ctx, &models.Vote{UserID: ada.ID, PostID: post.ID})
	require.NoError(t, err)
	assert.False(t, inserted)

	ok, err := f.repo.Votes.Exists(f.ctx, ada.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	counts, err := f.repo.Votes.CountByPosts(f.ctx, []uint{post.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[post.ID])
}

// A row written by someone else, with no read through this repository
// beforehand, still turns the insert into a no-op: the unique index decides.
func TestVoteRepository_InsertLosesToExistingRowViaIndex(t *testing.T) {
	f := newFixture(t)
	ada := f.user(t, "ada")
	post := f.post(t, ada, "p", time.Now())

	winner := &models.Vote{UserID: ada.ID, PostID: post.ID}
	require.NoError(t, f.db.Omit("User", "Post").Create(winner).Error)

	// without ON CONFLICT the index rejects the second row outright
	err := f.db.Omit("User", "Post").Create(&models.Vote{UserID: ada.ID, PostID: post.ID}).Error
	require.Error(t, err)

	inserted, err := f.repo.Votes.Insert(f.ctx, &models.Vote{UserID: ada.ID, PostID: post.ID})
	require.NoError(t, err)
	assert.False(t, inserted)

	var rows []models.Vote
	require.NoError(t, f.db.Where("user_id = ? AND post_id = ?", ada.ID, post.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, winner.ID, rows[0].ID)
}

// The test store allows one open connection, so these goroutines reach the
// database one at a time. This checks that repeated inserts from many callers
// keep one row; the insert-time race itself is covered by the index test above.
func TestVoteRepository_ConcurrentInsertsKeepOneRow(t *testing.T) {
	f := newFixture(t)
	ada := f.user(t, "ada")
	post := f.post(t, ada, "p", time.Now())

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := f.repo.Votes.Insert(f.ctx, &models.Vote{UserID: ada.ID, PostID: post.ID})
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	counts, err := f.repo.Votes.CountByPosts(f.ctx, []uint{post.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[post.ID])
}

func TestVoteRepository_CountByPostsAndVotedPosts(t *testing.T) {
	f := newFixture(t)
	ada := f.user(t, "ada")
	bob := f.user(t, "bob")
	p1 := f.post(t, ada, "one", time.Now())
	p2 := f.post(t, ada, "two", time.Now())
	p3 := f.post(t, ada, "three", time.Now())

	for _, v := range []models.Vote{
		{UserID: ada.ID, PostID: p1.ID},
		{UserID: bob.ID, PostID: p1.ID},
		{UserID: bob.ID, PostID: p2.ID},
	} {
		vote := v
		_, err := f.repo.Votes.Insert(f.ctx, &vote)
		require.NoError(t, err)
	}

	counts, err := f.repo.Votes.CountByPosts(f.ctx, []uint{p1.ID, p2.ID, p3.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int64{p1.ID: 2, p2.ID: 1, p3.ID: 0}, counts)

	empty, err := f.repo.Votes.CountByPosts(f.ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	voted, err := f.repo.Votes.FindVotedPosts(f.ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, voted, 2)
	assert.Equal(t, "one", voted[0].Title)
	assert.Equal(t, "two", voted[1].Title)
}
