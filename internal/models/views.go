package models

import (
	"time"
)

// Read models returned by the API. None of them carries a password.

type AuthorView struct {
	Username string `json:"username"`
}

type CommentView struct {
	ID          uint       `json:"id"`
	CommentText string     `json:"comment_text"`
	PostID      uint       `json:"post_id"`
	UserID      uint       `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	Author      AuthorView `json:"author"`
	Post        *PostRef   `json:"post,omitempty"`
}

// PostRef is the slim post shape nested under comments and voted posts.
type PostRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

type PostView struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	PostURL   string        `json:"post_url"`
	UserID    uint          `json:"user_id"`
	CreatedAt time.Time     `json:"created_at"`
	VoteCount int64         `json:"vote_count"`
	Author    AuthorView    `json:"author"`
	Comments  []CommentView `json:"comments"`
}

type UserView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// UserDetailView adds the user's own content and the posts they upvoted.
type UserDetailView struct {
	UserView
	Posts      []PostView    `json:"posts"`
	Comments   []CommentView `json:"comments"`
	VotedPosts []PostRef     `json:"voted_posts"`
}

func NewUserView(u *User) UserView {
	return UserView{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

func NewCommentView(c *Comment) CommentView {
	v := CommentView{
		ID:          c.ID,
		CommentText: c.CommentText,
		PostID:      c.PostID,
		UserID:      c.UserID,
		CreatedAt:   c.CreatedAt,
		Author:      AuthorView{Username: c.User.Username},
	}
	if c.Post.ID != 0 {
		v.Post = &PostRef{ID: c.Post.ID, Title: c.Post.Title}
	}
	return v
}

// NewPostView expects User and Comments.User preloaded and VoteCount filled.
func NewPostView(p *Post) PostView {
	comments := make([]CommentView, 0, len(p.Comments))
	for i := range p.Comments {
		comments = append(comments, NewCommentView(&p.Comments[i]))
	}
	return PostView{
		ID:        p.ID,
		Title:     p.Title,
		PostURL:   p.PostURL,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt,
		VoteCount: p.VoteCount,
		Author:    AuthorView{Username: p.User.Username},
		Comments:  comments,
	}
}
