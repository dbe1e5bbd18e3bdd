//go:build integration

package repository

import (
	"Novii/internal/api/config"
	"Novii/internal/migrations"
	"Novii/internal/model"
	"Novii/internal/pkg/database"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("novii"),
		postgres.WithUsername("novii"),
		postgres.WithPassword("novii"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	code := func() int {
		defer func() {
			if err := pgContainer.Terminate(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "failed to terminate container: %v\n", err)
			}
		}()

		dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to get connection string: %v\n", err)
			return 1
		}
		testDB, err = database.NewGormDB(&config.DBConfig{
			DSN:           dsn,
			MaxIdle:       2,
			MaxOpen:       5,
			MaxLifetime:   5,
			SlowThreshold: 200,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open database: %v\n", err)
			return 1
		}
		sqlDB, err := testDB.DB()
		if err != nil {
			return 1
		}
		if err = migrations.Up(sqlDB); err != nil {
			fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
			return 1
		}
		return m.Run()
	}()
	os.Exit(code)
}

// resetDB 所有表都级联引用 profiles
func resetDB(t *testing.T) {
	t.Helper()
	require.NoError(t, testDB.Exec("TRUNCATE profiles CASCADE").Error)
}

func createProfile(t *testing.T, username string) *model.Profile {
	t.Helper()
	profile := &model.Profile{Username: username}
	account := &model.Account{Email: username + "@example.com", PasswordHash: "hash"}
	require.NoError(t, NewProfileRepo(testDB).CreateProfileWithAccount(context.Background(), profile, account))
	return profile
}

func createPost(t *testing.T, owner *model.Profile) *model.Post {
	t.Helper()
	caption := "hello"
	post := &model.Post{UserID: owner.ID, Caption: &caption}
	require.NoError(t, NewPostRepo(testDB).CreatePost(context.Background(), post))
	return post
}

func reloadProfile(t *testing.T, id uuid.UUID) *model.Profile {
	t.Helper()
	profile, err := NewProfileRepo(testDB).GetProfileByID(context.Background(), id)
	require.NoError(t, err)
	return profile
}

func reloadPost(t *testing.T, id uuid.UUID) *model.Post {
	t.Helper()
	post, err := NewPostRepo(testDB).GetPost(context.Background(), id)
	require.NoError(t, err)
	return post
}

func countRows(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, testDB.Table(table).Count(&n).Error)
	return n
}

func TestProfileRepo_UniqueConstraints(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewProfileRepo(testDB)
	createProfile(t, "alice")

	err := repo.CreateProfileWithAccount(ctx,
		&model.Profile{Username: "alice"},
		&model.Account{Email: "other@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	err = repo.CreateProfileWithAccount(ctx,
		&model.Profile{Username: "alice2"},
		&model.Account{Email: "alice@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := repo.GetProfileByUsername(ctx, "alice2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLikeRepo_PostLike(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewLikeRepo(testDB)

	p1 := createProfile(t, "owner")
	p2 := createProfile(t, "liker")
	post := createPost(t, p1)

	like, err := model.NewLike(p2.ID, model.PostTarget(post.ID))
	require.NoError(t, err)
	require.NoError(t, repo.CreateLike(ctx, like))
	assert.Equal(t, 1, reloadPost(t, post.ID).LikesCount)

	var stored model.Like
	require.NoError(t, testDB.Where("id = ?", like.ID).First(&stored).Error)
	require.NotNil(t, stored.PostID)
	assert.Equal(t, post.ID, *stored.PostID)
	assert.Nil(t, stored.CommentID)

	dupe, _ := model.NewLike(p2.ID, model.PostTarget(post.ID))
	assert.ErrorIs(t, repo.CreateLike(ctx, dupe), ErrDuplicate)
	assert.Equal(t, 1, reloadPost(t, post.ID).LikesCount)

	exists, err := repo.CheckLikeExists(ctx, p2.ID, model.PostTarget(post.ID))
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := repo.DeleteLike(ctx, p2.ID, model.PostTarget(post.ID))
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, reloadPost(t, post.ID).LikesCount)

	removed, err = repo.DeleteLike(ctx, p2.ID, model.PostTarget(post.ID))
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 0, reloadPost(t, post.ID).LikesCount)

	exists, err = repo.CheckLikeExists(ctx, p2.ID, model.PostTarget(post.ID))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLikeRepo_CommentLike(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewLikeRepo(testDB)
	commentRepo := NewCommentRepo(testDB)

	p1 := createProfile(t, "owner")
	p2 := createProfile(t, "liker")
	post := createPost(t, p1)
	comment := &model.Comment{PostID: post.ID, UserID: p1.ID, Content: "first"}
	require.NoError(t, commentRepo.CreateComment(ctx, comment))
	assert.Equal(t, 1, reloadPost(t, post.ID).CommentsCount)

	like, err := model.NewLike(p2.ID, model.CommentTarget(comment.ID))
	require.NoError(t, err)
	require.NoError(t, repo.CreateLike(ctx, like))

	got, err := commentRepo.GetComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikesCount)
	assert.Equal(t, 0, reloadPost(t, post.ID).LikesCount)

	set, err := repo.GetLikedSet(ctx, p2.ID, model.TargetComment, []uuid.UUID{comment.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{comment.ID: true}, set)

	// 同时引用帖子与评论的记录被 CHECK 约束拒绝
	err = testDB.Exec("INSERT INTO likes (user_id, post_id, comment_id) VALUES (?, ?, ?)", p2.ID, post.ID, comment.ID).Error
	assert.Error(t, err)
}

func TestFollowRepo_Counters(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewFollowRepo(testDB)

	a := createProfile(t, "alice")
	b := createProfile(t, "bob")

	require.NoError(t, repo.CreateFollow(ctx, &model.Follow{FollowerID: a.ID, FollowingID: b.ID}))
	assert.ErrorIs(t, repo.CreateFollow(ctx, &model.Follow{FollowerID: a.ID, FollowingID: b.ID}), ErrDuplicate)
	assert.Error(t, repo.CreateFollow(ctx, &model.Follow{FollowerID: a.ID, FollowingID: a.ID}))
	assert.ErrorIs(t, repo.CreateFollow(ctx, &model.Follow{FollowerID: a.ID, FollowingID: uuid.New()}), ErrReferenceMissing)

	assert.Equal(t, 1, reloadProfile(t, a.ID).FollowingCount)
	assert.Equal(t, 0, reloadProfile(t, a.ID).FollowersCount)
	assert.Equal(t, 1, reloadProfile(t, b.ID).FollowersCount)

	set, err := repo.GetFollowingSet(ctx, a.ID, []uuid.UUID{b.ID, a.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{b.ID: true}, set)

	removed, err := repo.DeleteFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.DeleteFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 0, reloadProfile(t, a.ID).FollowingCount)
	assert.Equal(t, 0, reloadProfile(t, b.ID).FollowersCount)
}

func TestSavedPostRepo(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewSavedPostRepo(testDB)

	owner := createProfile(t, "owner")
	saver := createProfile(t, "saver")
	post := createPost(t, owner)

	require.NoError(t, repo.CreateSavedPost(ctx, &model.SavedPost{UserID: saver.ID, PostID: post.ID}))
	assert.ErrorIs(t, repo.CreateSavedPost(ctx, &model.SavedPost{UserID: saver.ID, PostID: post.ID}), ErrDuplicate)

	exists, err := repo.CheckSavedExists(ctx, saver.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	ids, err := repo.GetSavedPostIDs(ctx, saver.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{post.ID}, ids)

	removed, err := repo.DeleteSavedPost(ctx, saver.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	exists, err = repo.CheckSavedExists(ctx, saver.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStoryRepo_ActiveAndViews(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewStoryRepo(testDB)
	now := time.Now()

	owner := createProfile(t, "owner")
	viewer := createProfile(t, "viewer")

	active := &model.Story{UserID: owner.ID, MediaURL: "https://cdn/a.jpg", ExpiresAt: now.Add(time.Hour)}
	expired := &model.Story{UserID: owner.ID, MediaURL: "https://cdn/b.jpg", ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, repo.CreateStory(ctx, active))
	require.NoError(t, repo.CreateStory(ctx, expired))
	assert.Equal(t, model.MediaTypeImage, active.MediaType)

	stories, err := repo.GetActiveStoriesByUsers(ctx, []uuid.UUID{owner.ID}, now)
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, active.ID, stories[0].ID)

	require.NoError(t, repo.CreateStoryView(ctx, &model.StoryView{StoryID: active.ID, UserID: viewer.ID}))
	assert.ErrorIs(t, repo.CreateStoryView(ctx, &model.StoryView{StoryID: active.ID, UserID: viewer.ID}), ErrDuplicate)

	got, err := repo.GetStory(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewsCount)

	viewed, err := repo.GetViewedSet(ctx, viewer.ID, []uuid.UUID{active.ID, expired.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{active.ID: true}, viewed)

	n, err := repo.DeleteExpiredStories(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, err = repo.GetStory(ctx, expired.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMessageRepo_Thread(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewMessageRepo(testDB)

	a := createProfile(t, "alice")
	b := createProfile(t, "bob")
	c := createProfile(t, "carol")

	require.NoError(t, repo.CreateMessage(ctx, &model.Message{SenderID: a.ID, ReceiverID: b.ID, Content: "hi"}))
	require.NoError(t, repo.CreateMessage(ctx, &model.Message{SenderID: b.ID, ReceiverID: a.ID, Content: "hey"}))
	require.NoError(t, repo.CreateMessage(ctx, &model.Message{SenderID: c.ID, ReceiverID: a.ID, Content: "yo"}))

	fromA, err := repo.GetThreadMessages(ctx, a.ID, b.ID, nil, 10)
	require.NoError(t, err)
	fromB, err := repo.GetThreadMessages(ctx, b.ID, a.ID, nil, 10)
	require.NoError(t, err)
	require.Len(t, fromA, 2)
	assert.Equal(t, model.IDs(fromA, func(m *model.Message) uuid.UUID { return m.ID }),
		model.IDs(fromB, func(m *model.Message) uuid.UUID { return m.ID }))

	convs, err := repo.GetConversations(ctx, a.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, convs, 2)

	unread, err := repo.GetUnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	marked, err := repo.MarkThreadRead(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)
	unread, err = repo.GetUnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestNotificationRepo_Idempotent(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewNotificationRepo(testDB)

	user := createProfile(t, "alice")
	actor := createProfile(t, "bob")
	id := uuid.New()

	n := &model.Notification{ID: id, UserID: user.ID, ActorID: &actor.ID, Type: model.NotificationFollow}
	require.NoError(t, repo.CreateNotification(ctx, n))
	require.NoError(t, repo.CreateNotification(ctx, &model.Notification{ID: id, UserID: user.ID, Type: model.NotificationFollow}))
	assert.Equal(t, int64(1), countRows(t, "notifications"))

	err := repo.CreateNotification(ctx, &model.Notification{UserID: uuid.New(), Type: model.NotificationFollow})
	assert.ErrorIs(t, err, ErrReferenceMissing)

	count, err := repo.MarkAllAsRead(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	unread, err := repo.GetUnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestProfileRepo_DeleteCascade(t *testing.T) {
	resetDB(t)
	ctx := context.Background()

	gone := createProfile(t, "gone")
	stay := createProfile(t, "stay")
	followRepo := NewFollowRepo(testDB)
	likeRepo := NewLikeRepo(testDB)
	storyRepo := NewStoryRepo(testDB)

	require.NoError(t, followRepo.CreateFollow(ctx, &model.Follow{FollowerID: gone.ID, FollowingID: stay.ID}))
	require.NoError(t, followRepo.CreateFollow(ctx, &model.Follow{FollowerID: stay.ID, FollowingID: gone.ID}))

	goneMine := createPost(t, gone)
	stayPost := createPost(t, stay)

	like, _ := model.NewLike(gone.ID, model.PostTarget(stayPost.ID))
	require.NoError(t, likeRepo.CreateLike(ctx, like))
	like, _ = model.NewLike(stay.ID, model.PostTarget(goneMine.ID))
	require.NoError(t, likeRepo.CreateLike(ctx, like))

	stayComment := &model.Comment{PostID: stayPost.ID, UserID: stay.ID, Content: "mine"}
	require.NoError(t, NewCommentRepo(testDB).CreateComment(ctx, stayComment))
	require.NoError(t, NewCommentRepo(testDB).CreateComment(ctx, &model.Comment{PostID: stayPost.ID, UserID: gone.ID, Content: "bye"}))
	like, _ = model.NewLike(gone.ID, model.CommentTarget(stayComment.ID))
	require.NoError(t, likeRepo.CreateLike(ctx, like))

	require.NoError(t, NewSavedPostRepo(testDB).CreateSavedPost(ctx, &model.SavedPost{UserID: gone.ID, PostID: stayPost.ID}))

	story := &model.Story{UserID: stay.ID, MediaURL: "https://cdn/s.jpg", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, storyRepo.CreateStory(ctx, story))
	require.NoError(t, storyRepo.CreateStoryView(ctx, &model.StoryView{StoryID: story.ID, UserID: gone.ID}))

	require.NoError(t, NewProfileRepo(testDB).DeleteProfile(ctx, gone.ID))

	assert.Nil(t, reloadProfile(t, gone.ID))
	assert.Nil(t, reloadPost(t, goneMine.ID))

	staying := reloadProfile(t, stay.ID)
	assert.Zero(t, staying.FollowersCount)
	assert.Zero(t, staying.FollowingCount)
	assert.Equal(t, 1, staying.PostsCount)

	post := reloadPost(t, stayPost.ID)
	assert.Zero(t, post.LikesCount)
	assert.Equal(t, 1, post.CommentsCount)

	comment, err := NewCommentRepo(testDB).GetComment(ctx, stayComment.ID)
	require.NoError(t, err)
	assert.Zero(t, comment.LikesCount)

	gotStory, err := storyRepo.GetStory(ctx, story.ID)
	require.NoError(t, err)
	assert.Zero(t, gotStory.ViewsCount)

	assert.Zero(t, countRows(t, "likes"))
	assert.Zero(t, countRows(t, "follows"))
	assert.Zero(t, countRows(t, "saved_posts"))
	assert.Zero(t, countRows(t, "story_views"))
	assert.Equal(t, int64(1), countRows(t, "accounts"))

	fixed, err := NewCounterRepo(testDB).ReconcileCounters(ctx)
	require.NoError(t, err)
	for name, n := range fixed {
		assert.Zero(t, n, name)
	}
}

func TestPostRepo_DeleteCascade(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewPostRepo(testDB)

	owner := createProfile(t, "owner")
	fan := createProfile(t, "fan")
	post := createPost(t, owner)
	assert.Equal(t, 1, reloadProfile(t, owner.ID).PostsCount)

	comment := &model.Comment{PostID: post.ID, UserID: fan.ID, Content: "nice"}
	require.NoError(t, NewCommentRepo(testDB).CreateComment(ctx, comment))
	like, _ := model.NewLike(fan.ID, model.CommentTarget(comment.ID))
	require.NoError(t, NewLikeRepo(testDB).CreateLike(ctx, like))
	require.NoError(t, NewSavedPostRepo(testDB).CreateSavedPost(ctx, &model.SavedPost{UserID: fan.ID, PostID: post.ID}))

	require.NoError(t, repo.DeletePost(ctx, post))
	assert.Zero(t, reloadProfile(t, owner.ID).PostsCount)
	assert.Zero(t, countRows(t, "comments"))
	assert.Zero(t, countRows(t, "likes"))
	assert.Zero(t, countRows(t, "saved_posts"))

	require.NoError(t, repo.DeletePost(ctx, post))
	assert.Zero(t, reloadProfile(t, owner.ID).PostsCount)
}

func TestPostRepo_FeedAndExplore(t *testing.T) {
	resetDB(t)
	ctx := context.Background()
	repo := NewPostRepo(testDB)

	me := createProfile(t, "me")
	friend := createProfile(t, "friend")
	stranger := createProfile(t, "stranger")
	hidden := createProfile(t, "hidden")
	require.NoError(t, NewProfileRepo(testDB).UpdateProfile(ctx, hidden.ID, map[string]interface{}{"is_private": true}))
	require.NoError(t, NewFollowRepo(testDB).CreateFollow(ctx, &model.Follow{FollowerID: me.ID, FollowingID: friend.ID}))

	mine := createPost(t, me)
	friendPost := createPost(t, friend)
	archived := createPost(t, friend)
	require.NoError(t, repo.UpdatePost(ctx, archived.ID, map[string]interface{}{"is_archived": true}))
	strangerPost := createPost(t, stranger)
	createPost(t, hidden)

	feed, err := repo.GetFeed(ctx, me.ID, nil, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{mine.ID, friendPost.ID},
		model.IDs(feed, func(p *model.Post) uuid.UUID { return p.ID }))

	first, err := repo.GetFeed(ctx, me.ID, nil, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)
	rest, err := repo.GetFeed(ctx, me.ID, &Cursor{CreatedAt: first[0].CreatedAt, ID: first[0].ID}, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.NotEqual(t, first[0].ID, rest[0].ID)

	explore, err := repo.GetExplore(ctx, me.ID, 10, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{friendPost.ID, strangerPost.ID},
		model.IDs(explore, func(p *model.Post) uuid.UUID { return p.ID }))
}

func TestCounterRepo_ReconcileDrift(t *testing.T) {
	resetDB(t)
	ctx := context.Background()

	a := createProfile(t, "alice")
	b := createProfile(t, "bob")
	require.NoError(t, NewFollowRepo(testDB).CreateFollow(ctx, &model.Follow{FollowerID: a.ID, FollowingID: b.ID}))
	post := createPost(t, b)

	require.NoError(t, testDB.Exec("UPDATE profiles SET followers_count = 7 WHERE id = ?", b.ID).Error)
	require.NoError(t, testDB.Exec("UPDATE posts SET likes_count = 3 WHERE id = ?", post.ID).Error)

	fixed, err := NewCounterRepo(testDB).ReconcileCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fixed["profiles.followers_count"])
	assert.Equal(t, int64(1), fixed["posts.likes_count"])
	assert.Zero(t, fixed["profiles.following_count"])

	assert.Equal(t, 1, reloadProfile(t, b.ID).FollowersCount)
	assert.Zero(t, reloadPost(t, post.ID).LikesCount)
}
