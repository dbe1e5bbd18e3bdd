package service

import (
	"Novii/internal/api/dto"
	"Novii/internal/model"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postFixture struct {
	db       *memDB
	pub      *recordingPublisher
	posts    PostService
	comments CommentService
	saved    SavedPostService
}

func newPostFixture() *postFixture {
	db := newMemDB()
	pub := &recordingPublisher{}
	return &postFixture{
		db:       db,
		pub:      pub,
		posts:    NewPostService(memPostRepo{db}, memProfileRepo{db}, memFollowRepo{db}, memLikeRepo{db}, memSavedPostRepo{db}, pub),
		comments: NewCommentService(memCommentRepo{db}, memPostRepo{db}, memProfileRepo{db}, memLikeRepo{db}, memFollowRepo{db}, pub),
		saved:    NewSavedPostService(memSavedPostRepo{db}, memPostRepo{db}, memProfileRepo{db}, memLikeRepo{db}, memFollowRepo{db}),
	}
}

func strPtr(s string) *string { return &s }

func TestCreatePost(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	author := f.db.addProfile("author", false)
	friend := f.db.addProfile("friend", false)

	res, err := f.posts.CreatePost(ctx, author.ID, &dto.CreatePostDTO{Caption: strPtr("  sunset with @Friend and @nobody <b>x</b>")})
	require.NoError(t, err)
	assert.Equal(t, "sunset with @Friend and @nobody x", *res.Caption)
	assert.Equal(t, "author", res.Author.Username)
	assert.Equal(t, 1, f.db.profiles[author.ID].PostsCount)

	mentions := f.pub.ofType(model.NotificationMention)
	require.Len(t, mentions, 1)
	assert.Equal(t, friend.ID, mentions[0].RecipientID)

	_, err = f.posts.CreatePost(ctx, author.ID, &dto.CreatePostDTO{Caption: strPtr("   ")})
	assert.ErrorIs(t, err, ErrContentEmpty)
}

func TestGetPost_Visibility(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	owner := f.db.addProfile("owner", true)
	fan := f.db.addProfile("fan", false)
	stranger := f.db.addProfile("stranger", false)
	f.db.addFollow(fan, owner)
	post := f.db.addPost(owner, false)
	archived := f.db.addPost(owner, true)

	tests := []struct {
		name   string
		viewer uuid.UUID
		postID uuid.UUID
		want   error
	}{
		{"owner", owner.ID, post.ID, nil},
		{"follower", fan.ID, post.ID, nil},
		{"stranger", stranger.ID, post.ID, ErrProfilePrivate},
		{"anonymous", uuid.Nil, post.ID, ErrProfilePrivate},
		{"archived by owner", owner.ID, archived.ID, nil},
		{"archived by follower", fan.ID, archived.ID, ErrPostNotFound},
		{"missing", fan.ID, uuid.New(), ErrPostNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.posts.GetPost(ctx, tt.viewer, tt.postID)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestUpdateAndDeletePost_OwnerOnly(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	owner := f.db.addProfile("owner", false)
	other := f.db.addProfile("other", false)
	post := f.db.addPost(owner, false)

	archived := true
	_, err := f.posts.UpdatePost(ctx, other.ID, post.ID, &dto.UpdatePostDTO{IsArchived: &archived})
	assert.ErrorIs(t, err, ErrForbidden)

	res, err := f.posts.UpdatePost(ctx, owner.ID, post.ID, &dto.UpdatePostDTO{IsArchived: &archived})
	require.NoError(t, err)
	assert.True(t, res.IsArchived)

	assert.ErrorIs(t, f.posts.DeletePost(ctx, other.ID, post.ID), ErrForbidden)
	require.NoError(t, f.posts.DeletePost(ctx, owner.ID, post.ID))
	assert.Equal(t, 0, f.db.profiles[owner.ID].PostsCount)
	assert.ErrorIs(t, f.posts.DeletePost(ctx, owner.ID, post.ID), ErrPostNotFound)
}

func TestGetFeed_Cursor(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	me := f.db.addProfile("me", false)
	followed := f.db.addProfile("followed", false)
	stranger := f.db.addProfile("stranger", false)
	f.db.addFollow(me, followed)

	base := time.Now().Add(-time.Hour)
	for i, owner := range []*model.Profile{me, followed, followed, stranger} {
		p := f.db.addPost(owner, false)
		p.CreatedAt = base.Add(time.Duration(i) * time.Minute)
	}
	f.db.addPost(followed, true)

	first, err := f.posts.GetFeed(ctx, me.ID, &dto.CursorPageDTO{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first.List, 2)
	require.True(t, first.HasMore)

	second, err := f.posts.GetFeed(ctx, me.ID, &dto.CursorPageDTO{Cursor: first.NextCursor, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, second.List, 1)
	assert.False(t, second.HasMore)
	assert.Equal(t, "me", second.List[0].Author.Username)
}

func TestGetUserPosts_ArchivedOnlyForOwner(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	owner := f.db.addProfile("owner", false)
	viewer := f.db.addProfile("viewer", false)
	f.db.addPost(owner, false)
	f.db.addPost(owner, true)

	own, err := f.posts.GetUserPosts(ctx, owner.ID, "owner", 1, 10)
	require.NoError(t, err)
	assert.Len(t, own.List, 2)

	others, err := f.posts.GetUserPosts(ctx, viewer.ID, "Owner", 1, 10)
	require.NoError(t, err)
	assert.Len(t, others.List, 1)
}

func TestGetExplore_PublicOnly(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	me := f.db.addProfile("me", false)
	public := f.db.addProfile("public", false)
	private := f.db.addProfile("private", true)
	f.db.addPost(me, false)
	f.db.addPost(public, false)
	f.db.addPost(private, false)

	res, err := f.posts.GetExplore(ctx, me.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, res.List, 1)
	assert.Equal(t, "public", res.List[0].Author.Username)
}

func TestComments(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	owner := f.db.addProfile("owner", false)
	commenter := f.db.addProfile("commenter", false)
	other := f.db.addProfile("other", false)
	post := f.db.addPost(owner, false)

	c, err := f.comments.CreateComment(ctx, commenter.ID, post.ID, &dto.CreateCommentDTO{Content: "wow"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.db.posts[post.ID].CommentsCount)

	events := f.pub.ofType(model.NotificationComment)
	require.Len(t, events, 1)
	assert.Equal(t, owner.ID, events[0].RecipientID)
	assert.Equal(t, "wow", *events[0].Content)

	list, err := f.comments.GetComments(ctx, uuid.Nil, post.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.List, 1)
	assert.Equal(t, "commenter", list.List[0].Author.Username)

	commentID := uuid.MustParse(c.ID)
	assert.ErrorIs(t, f.comments.DeleteComment(ctx, other.ID, commentID), ErrForbidden)
	require.NoError(t, f.comments.DeleteComment(ctx, owner.ID, commentID))
	assert.Equal(t, 0, f.db.posts[post.ID].CommentsCount)
	assert.ErrorIs(t, f.comments.DeleteComment(ctx, owner.ID, commentID), ErrCommentNotFound)

	_, err = f.comments.CreateComment(ctx, commenter.ID, post.ID, &dto.CreateCommentDTO{Content: " "})
	assert.ErrorIs(t, err, ErrContentEmpty)
}

func TestSavedPosts(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	owner := f.db.addProfile("owner", false)
	me := f.db.addProfile("me", false)
	post := f.db.addPost(owner, false)

	require.NoError(t, f.saved.SavePost(ctx, me.ID, post.ID))
	assert.ErrorIs(t, f.saved.SavePost(ctx, me.ID, post.ID), ErrActionDuplicate)

	res, err := f.saved.GetSavedPosts(ctx, me.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, res.List, 1)
	assert.True(t, res.List[0].IsSaved)

	require.NoError(t, f.saved.UnsavePost(ctx, me.ID, post.ID))
	require.NoError(t, f.saved.UnsavePost(ctx, me.ID, post.ID))
	res, err = f.saved.GetSavedPosts(ctx, me.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, res.List)
}
