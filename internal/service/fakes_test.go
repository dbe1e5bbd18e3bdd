package service

import (
	"Novii/internal/model"
	"Novii/internal/pkg/cache"
	"Novii/internal/pkg/consts"
	"Novii/internal/repository"
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memDB 仓储接口的内存实现，计数维护方式与数据库实现一致
type memDB struct {
	mu            sync.Mutex
	profiles      map[uuid.UUID]*model.Profile
	accounts      map[string]*model.Account
	posts         map[uuid.UUID]*model.Post
	comments      map[uuid.UUID]*model.Comment
	likes         []*model.Like
	follows       []*model.Follow
	saved         []*model.SavedPost
	stories       map[uuid.UUID]*model.Story
	views         []*model.StoryView
	messages      []*model.Message
	notifications map[uuid.UUID]*model.Notification
}

func newMemDB() *memDB {
	return &memDB{
		profiles:      map[uuid.UUID]*model.Profile{},
		accounts:      map[string]*model.Account{},
		posts:         map[uuid.UUID]*model.Post{},
		comments:      map[uuid.UUID]*model.Comment{},
		stories:       map[uuid.UUID]*model.Story{},
		notifications: map[uuid.UUID]*model.Notification{},
	}
}

func (db *memDB) addProfile(username string, private bool) *model.Profile {
	db.mu.Lock()
	defer db.mu.Unlock()
	p := &model.Profile{ID: uuid.New(), Username: username, IsPrivate: private, CreatedAt: time.Now()}
	db.profiles[p.ID] = p
	return p
}

func (db *memDB) addPost(owner *model.Profile, archived bool) *model.Post {
	db.mu.Lock()
	defer db.mu.Unlock()
	caption := "hello"
	p := &model.Post{ID: uuid.New(), UserID: owner.ID, Caption: &caption, IsArchived: archived, CreatedAt: time.Now()}
	db.posts[p.ID] = p
	owner.PostsCount++
	return p
}

func (db *memDB) addFollow(follower, following *model.Profile) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.follows = append(db.follows, &model.Follow{ID: uuid.New(), FollowerID: follower.ID, FollowingID: following.ID, CreatedAt: time.Now()})
	follower.FollowingCount++
	following.FollowersCount++
}

func dup(name string) error {
	return fmt.Errorf("%w: %s", repository.ErrDuplicate, name)
}

func copyProfile(p *model.Profile) *model.Profile {
	c := *p
	return &c
}

type memProfileRepo struct{ db *memDB }

func (r memProfileRepo) CreateProfileWithAccount(_ context.Context, profile *model.Profile, account *model.Account) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.profiles {
		if p.Username == profile.Username {
			return repository.ErrUsernameTaken
		}
	}
	if _, ok := r.db.accounts[account.Email]; ok {
		return repository.ErrEmailTaken
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	profile.CreatedAt = time.Now()
	account.ID = profile.ID
	r.db.profiles[profile.ID] = copyProfile(profile)
	r.db.accounts[account.Email] = account
	return nil
}

func (r memProfileRepo) GetProfileByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p, ok := r.db.profiles[id]; ok {
		return copyProfile(p), nil
	}
	return nil, nil
}

func (r memProfileRepo) GetProfilesByIDs(_ context.Context, ids []uuid.UUID) ([]*model.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	res := make([]*model.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.db.profiles[id]; ok {
			res = append(res, copyProfile(p))
		}
	}
	return res, nil
}

func (r memProfileRepo) GetProfileByUsername(_ context.Context, username string) (*model.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.profiles {
		if p.Username == username {
			return copyProfile(p), nil
		}
	}
	return nil, nil
}

func (r memProfileRepo) GetProfilesByUsernames(ctx context.Context, usernames []string) ([]*model.Profile, error) {
	res := make([]*model.Profile, 0, len(usernames))
	for _, u := range usernames {
		p, _ := r.GetProfileByUsername(ctx, u)
		if p != nil {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r memProfileRepo) GetAccountByEmail(_ context.Context, email string) (*model.Account, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.accounts[email], nil
}

func (r memProfileRepo) UpdateProfile(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.profiles[id]
	if !ok {
		return nil
	}
	if v, ok := updates["username"].(string); ok {
		for _, other := range r.db.profiles {
			if other.ID != id && other.Username == v {
				return repository.ErrUsernameTaken
			}
		}
		p.Username = v
	}
	if v, ok := updates["bio"].(*string); ok {
		p.Bio = v
	}
	if v, ok := updates["is_private"].(bool); ok {
		p.IsPrivate = v
	}
	return nil
}

func (r memProfileRepo) DeleteProfile(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.profiles, id)
	return nil
}

func (r memProfileRepo) SearchProfiles(_ context.Context, keyword string, limit, _ int) ([]*model.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var res []*model.Profile
	for _, p := range r.db.profiles {
		if len(res) < limit && len(keyword) > 0 && len(p.Username) >= len(keyword) && p.Username[:len(keyword)] == keyword {
			res = append(res, copyProfile(p))
		}
	}
	return res, nil
}

func (r memProfileRepo) GetSuggestions(_ context.Context, userID uuid.UUID, limit int) ([]*model.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	followed := map[uuid.UUID]bool{}
	for _, f := range r.db.follows {
		if f.FollowerID == userID {
			followed[f.FollowingID] = true
		}
	}
	var res []*model.Profile
	for _, p := range r.db.profiles {
		if p.ID != userID && !followed[p.ID] && len(res) < limit {
			res = append(res, copyProfile(p))
		}
	}
	return res, nil
}

type memFollowRepo struct{ db *memDB }

func (r memFollowRepo) CreateFollow(_ context.Context, follow *model.Follow) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, f := range r.db.follows {
		if f.FollowerID == follow.FollowerID && f.FollowingID == follow.FollowingID {
			return dup("uq_follows_pair")
		}
	}
	follow.ID = uuid.New()
	follow.CreatedAt = time.Now()
	r.db.follows = append(r.db.follows, follow)
	if p, ok := r.db.profiles[follow.FollowerID]; ok {
		p.FollowingCount++
	}
	if p, ok := r.db.profiles[follow.FollowingID]; ok {
		p.FollowersCount++
	}
	return nil
}

func (r memFollowRepo) DeleteFollow(_ context.Context, followerID, followingID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, f := range r.db.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			r.db.follows = append(r.db.follows[:i], r.db.follows[i+1:]...)
			if p, ok := r.db.profiles[followerID]; ok {
				p.FollowingCount--
			}
			if p, ok := r.db.profiles[followingID]; ok {
				p.FollowersCount--
			}
			return true, nil
		}
	}
	return false, nil
}

func (r memFollowRepo) GetFollow(_ context.Context, followerID, followingID uuid.UUID) (*model.Follow, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, f := range r.db.follows {
		if f.FollowerID == followerID && f.FollowingID == followingID {
			return f, nil
		}
	}
	return nil, nil
}

func (r memFollowRepo) list(match func(f *model.Follow) bool, limit, offset int) []*model.Follow {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var res []*model.Follow
	for _, f := range r.db.follows {
		if match(f) {
			res = append(res, f)
		}
	}
	if offset >= len(res) {
		return []*model.Follow{}
	}
	res = res[offset:]
	if len(res) > limit {
		res = res[:limit]
	}
	return res
}

func (r memFollowRepo) GetFollowers(_ context.Context, userID uuid.UUID, limit, offset int) ([]*model.Follow, error) {
	return r.list(func(f *model.Follow) bool { return f.FollowingID == userID }, limit, offset), nil
}

func (r memFollowRepo) GetFollowing(_ context.Context, userID uuid.UUID, limit, offset int) ([]*model.Follow, error) {
	return r.list(func(f *model.Follow) bool { return f.FollowerID == userID }, limit, offset), nil
}

func (r memFollowRepo) GetFollowingIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	follows := r.list(func(f *model.Follow) bool { return f.FollowerID == userID }, 1<<20, 0)
	return model.IDs(follows, func(f *model.Follow) uuid.UUID { return f.FollowingID }), nil
}

func (r memFollowRepo) GetFollowingSet(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	following, _ := r.GetFollowingIDs(ctx, userID)
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	res := map[uuid.UUID]bool{}
	for _, id := range following {
		if want[id] {
			res[id] = true
		}
	}
	return res, nil
}

type memPostRepo struct{ db *memDB }

func (r memPostRepo) CreatePost(_ context.Context, post *model.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	post.ID = uuid.New()
	post.CreatedAt = time.Now()
	r.db.posts[post.ID] = post
	if p, ok := r.db.profiles[post.UserID]; ok {
		p.PostsCount++
	}
	return nil
}

func (r memPostRepo) GetPost(_ context.Context, id uuid.UUID) (*model.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p, ok := r.db.posts[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (r memPostRepo) GetPostsByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Post, error) {
	res := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		if p, _ := r.GetPost(ctx, id); p != nil {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r memPostRepo) sorted(match func(p *model.Post) bool) []*model.Post {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var res []*model.Post
	for _, p := range r.db.posts {
		if match(p) {
			c := *p
			res = append(res, &c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (r memPostRepo) GetPostsByUser(_ context.Context, userID uuid.UUID, includeArchived bool, limit, offset int) ([]*model.Post, error) {
	return page(r.sorted(func(p *model.Post) bool {
		return p.UserID == userID && (includeArchived || !p.IsArchived)
	}), limit, offset), nil
}

func (r memPostRepo) GetFeed(ctx context.Context, userID uuid.UUID, cursor *repository.Cursor, limit int) ([]*model.Post, error) {
	following, _ := memFollowRepo{db: r.db}.GetFollowingIDs(ctx, userID)
	authors := map[uuid.UUID]bool{userID: true}
	for _, id := range following {
		authors[id] = true
	}
	posts := r.sorted(func(p *model.Post) bool {
		if !authors[p.UserID] || p.IsArchived {
			return false
		}
		return cursor == nil || p.CreatedAt.Before(cursor.CreatedAt)
	})
	return page(posts, limit, 0), nil
}

func (r memPostRepo) GetExplore(_ context.Context, viewerID uuid.UUID, limit, offset int) ([]*model.Post, error) {
	return page(r.sorted(func(p *model.Post) bool {
		owner := r.db.profiles[p.UserID]
		return p.UserID != viewerID && !p.IsArchived && owner != nil && !owner.IsPrivate
	}), limit, offset), nil
}

func (r memPostRepo) UpdatePost(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.posts[id]
	if !ok {
		return nil
	}
	if v, ok := updates["caption"].(*string); ok {
		p.Caption = v
	}
	if v, ok := updates["is_archived"].(bool); ok {
		p.IsArchived = v
	}
	return nil
}

func (r memPostRepo) DeletePost(_ context.Context, post *model.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.posts[post.ID]; !ok {
		return nil
	}
	delete(r.db.posts, post.ID)
	if p, ok := r.db.profiles[post.UserID]; ok {
		p.PostsCount--
	}
	return nil
}

type memCommentRepo struct{ db *memDB }

func (r memCommentRepo) CreateComment(_ context.Context, comment *model.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	comment.ID = uuid.New()
	comment.CreatedAt = time.Now()
	r.db.comments[comment.ID] = comment
	if p, ok := r.db.posts[comment.PostID]; ok {
		p.CommentsCount++
	}
	return nil
}

func (r memCommentRepo) GetComment(_ context.Context, id uuid.UUID) (*model.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c, ok := r.db.comments[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r memCommentRepo) GetCommentsByPost(_ context.Context, postID uuid.UUID, limit, offset int) ([]*model.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var res []*model.Comment
	for _, c := range r.db.comments {
		if c.PostID == postID {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return page(res, limit, offset), nil
}

func (r memCommentRepo) DeleteComment(_ context.Context, comment *model.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.comments[comment.ID]; !ok {
		return nil
	}
	delete(r.db.comments, comment.ID)
	if p, ok := r.db.posts[comment.PostID]; ok {
		p.CommentsCount--
	}
	return nil
}

type memLikeRepo struct{ db *memDB }

func likeMatches(l *model.Like, userID uuid.UUID, target model.LikeTarget) bool {
	t, err := l.Target()
	return err == nil && l.UserID == userID && t == target
}

func (r memLikeRepo) adjust(target model.LikeTarget, delta int) {
	switch target.Kind {
	case model.TargetPost:
		if p, ok := r.db.posts[target.ID]; ok {
			p.LikesCount += delta
		}
	case model.TargetComment:
		if c, ok := r.db.comments[target.ID]; ok {
			c.LikesCount += delta
		}
	}
}

func (r memLikeRepo) CreateLike(_ context.Context, like *model.Like) error {
	target, err := like.Target()
	if err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, l := range r.db.likes {
		if likeMatches(l, like.UserID, target) {
			return dup("uq_likes_user_target")
		}
	}
	like.ID = uuid.New()
	like.CreatedAt = time.Now()
	r.db.likes = append(r.db.likes, like)
	r.adjust(target, 1)
	return nil
}

func (r memLikeRepo) DeleteLike(_ context.Context, userID uuid.UUID, target model.LikeTarget) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, l := range r.db.likes {
		if likeMatches(l, userID, target) {
			r.db.likes = append(r.db.likes[:i], r.db.likes[i+1:]...)
			r.adjust(target, -1)
			return true, nil
		}
	}
	return false, nil
}

func (r memLikeRepo) CheckLikeExists(_ context.Context, userID uuid.UUID, target model.LikeTarget) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, l := range r.db.likes {
		if likeMatches(l, userID, target) {
			return true, nil
		}
	}
	return false, nil
}

func (r memLikeRepo) GetLikedSet(ctx context.Context, userID uuid.UUID, kind model.TargetKind, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	res := map[uuid.UUID]bool{}
	for _, id := range ids {
		if ok, _ := r.CheckLikeExists(ctx, userID, model.LikeTarget{Kind: kind, ID: id}); ok {
			res[id] = true
		}
	}
	return res, nil
}

func (r memLikeRepo) GetLikedPostIDs(_ context.Context, userID uuid.UUID, limit, offset int) ([]uuid.UUID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var ids []uuid.UUID
	for i := len(r.db.likes) - 1; i >= 0; i-- {
		l := r.db.likes[i]
		if l.UserID == userID && l.PostID != nil {
			ids = append(ids, *l.PostID)
		}
	}
	return page(ids, limit, offset), nil
}

type memSavedPostRepo struct{ db *memDB }

func (r memSavedPostRepo) CreateSavedPost(_ context.Context, saved *model.SavedPost) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.saved {
		if s.UserID == saved.UserID && s.PostID == saved.PostID {
			return dup("uq_saved_posts_user_post")
		}
	}
	saved.ID = uuid.New()
	r.db.saved = append(r.db.saved, saved)
	return nil
}

func (r memSavedPostRepo) DeleteSavedPost(_ context.Context, userID, postID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i, s := range r.db.saved {
		if s.UserID == userID && s.PostID == postID {
			r.db.saved = append(r.db.saved[:i], r.db.saved[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r memSavedPostRepo) CheckSavedExists(_ context.Context, userID, postID uuid.UUID) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.saved {
		if s.UserID == userID && s.PostID == postID {
			return true, nil
		}
	}
	return false, nil
}

func (r memSavedPostRepo) GetSavedPostIDs(_ context.Context, userID uuid.UUID, limit, offset int) ([]uuid.UUID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var ids []uuid.UUID
	for i := len(r.db.saved) - 1; i >= 0; i-- {
		if r.db.saved[i].UserID == userID {
			ids = append(ids, r.db.saved[i].PostID)
		}
	}
	return page(ids, limit, offset), nil
}

func (r memSavedPostRepo) GetSavedSet(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	res := map[uuid.UUID]bool{}
	for _, id := range postIDs {
		if ok, _ := r.CheckSavedExists(ctx, userID, id); ok {
			res[id] = true
		}
	}
	return res, nil
}

type memStoryRepo struct{ db *memDB }

func (r memStoryRepo) CreateStory(_ context.Context, story *model.Story) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	r.db.stories[story.ID] = story
	return nil
}

func (r memStoryRepo) GetStory(_ context.Context, id uuid.UUID) (*model.Story, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if st, ok := r.db.stories[id]; ok {
		c := *st
		return &c, nil
	}
	return nil, nil
}

func (r memStoryRepo) GetActiveStoriesByUsers(_ context.Context, userIDs []uuid.UUID, now time.Time) ([]*model.Story, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	authors := map[uuid.UUID]bool{}
	for _, id := range userIDs {
		authors[id] = true
	}
	var res []*model.Story
	for _, st := range r.db.stories {
		if authors[st.UserID] && st.ActiveAt(now) {
			res = append(res, st)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (r memStoryRepo) CreateStoryView(_ context.Context, view *model.StoryView) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, v := range r.db.views {
		if v.StoryID == view.StoryID && v.UserID == view.UserID {
			return dup("uq_story_views_viewer")
		}
	}
	view.ID = uuid.New()
	view.ViewedAt = time.Now()
	r.db.views = append(r.db.views, view)
	if st, ok := r.db.stories[view.StoryID]; ok {
		st.ViewsCount++
	}
	return nil
}

func (r memStoryRepo) GetStoryViewers(_ context.Context, storyID uuid.UUID, limit, offset int) ([]*model.StoryView, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var res []*model.StoryView
	for _, v := range r.db.views {
		if v.StoryID == storyID {
			res = append(res, v)
		}
	}
	return page(res, limit, offset), nil
}

func (r memStoryRepo) GetViewedSet(_ context.Context, userID uuid.UUID, storyIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range storyIDs {
		want[id] = true
	}
	res := map[uuid.UUID]bool{}
	for _, v := range r.db.views {
		if v.UserID == userID && want[v.StoryID] {
			res[v.StoryID] = true
		}
	}
	return res, nil
}

func (r memStoryRepo) DeleteStory(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.stories, id)
	return nil
}

func (r memStoryRepo) DeleteExpiredStories(_ context.Context, before time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, st := range r.db.stories {
		if st.ExpiresAt.Before(before) {
			delete(r.db.stories, id)
			n++
		}
	}
	return n, nil
}

type memMessageRepo struct{ db *memDB }

func (r memMessageRepo) CreateMessage(_ context.Context, msg *model.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now().Add(time.Duration(len(r.db.messages)) * time.Millisecond)
	r.db.messages = append(r.db.messages, msg)
	return nil
}

func inThread(m *model.Message, a, b uuid.UUID) bool {
	return model.NewThreadKey(m.SenderID, m.ReceiverID) == model.NewThreadKey(a, b)
}

func (r memMessageRepo) GetThreadMessages(_ context.Context, userID, peerID uuid.UUID, cursor *repository.Cursor, limit int) ([]*model.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var res []*model.Message
	for i := len(r.db.messages) - 1; i >= 0; i-- {
		m := r.db.messages[i]
		if !inThread(m, userID, peerID) {
			continue
		}
		if cursor != nil && !m.CreatedAt.Before(cursor.CreatedAt) {
			continue
		}
		res = append(res, m)
	}
	return page(res, limit, 0), nil
}

func (r memMessageRepo) GetConversations(_ context.Context, userID uuid.UUID, limit, offset int) ([]*model.ConversationRow, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	seen := map[uuid.UUID]bool{}
	var rows []*model.ConversationRow
	for i := len(r.db.messages) - 1; i >= 0; i-- {
		m := r.db.messages[i]
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		peer := m.Peer(userID)
		if seen[peer] {
			continue
		}
		seen[peer] = true
		rows = append(rows, &model.ConversationRow{PeerID: peer, Message: *m})
	}
	return page(rows, limit, offset), nil
}

func (r memMessageRepo) GetUnreadCountsByPeer(_ context.Context, userID uuid.UUID, peerIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range peerIDs {
		want[id] = true
	}
	res := map[uuid.UUID]int64{}
	for _, m := range r.db.messages {
		if m.ReceiverID == userID && !m.IsRead && want[m.SenderID] {
			res[m.SenderID]++
		}
	}
	return res, nil
}

func (r memMessageRepo) GetUnreadCount(_ context.Context, userID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, m := range r.db.messages {
		if m.ReceiverID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (r memMessageRepo) MarkThreadRead(_ context.Context, receiverID, senderID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, m := range r.db.messages {
		if m.ReceiverID == receiverID && m.SenderID == senderID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

type memNotificationRepo struct{ db *memDB }

func (r memNotificationRepo) CreateNotification(_ context.Context, n *model.Notification) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.profiles[n.UserID]; !ok {
		return fmt.Errorf("%w: fk_notifications_user", repository.ErrReferenceMissing)
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if _, ok := r.db.notifications[n.ID]; ok {
		return nil
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.db.notifications[n.ID] = n
	return nil
}

func (r memNotificationRepo) GetNotification(_ context.Context, id uuid.UUID) (*model.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.notifications[id], nil
}

func (r memNotificationRepo) GetNotificationList(_ context.Context, userID uuid.UUID, limit, offset int) ([]*model.Notification, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var res []*model.Notification
	for _, n := range r.db.notifications {
		if n.UserID == userID {
			res = append(res, n)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return page(res, limit, offset), nil
}

func (r memNotificationRepo) GetUnreadCount(_ context.Context, userID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, item := range r.db.notifications {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (r memNotificationRepo) MarkAsRead(_ context.Context, userID, id uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if n, ok := r.db.notifications[id]; ok && n.UserID == userID && !n.IsRead {
		n.IsRead = true
		return 1, nil
	}
	return 0, nil
}

func (r memNotificationRepo) MarkAllAsRead(_ context.Context, userID uuid.UUID) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var count int64
	for _, n := range r.db.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []*InteractionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event *InteractionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(t string) []*InteractionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var res []*InteractionEvent
	for _, e := range p.events {
		if e.Type == t {
			res = append(res, e)
		}
	}
	return res
}

func newTestStore(t *testing.T) cache.Store {
	t.Helper()
	store, err := cache.NewLocalStore(128, consts.TokenRevokedKey)
	require.NoError(t, err)
	return store
}
