package repository

import (
	"context"

	"gorm.io/gorm"
)

type CounterRepo interface {
	ReconcileCounters(ctx context.Context) (map[string]int64, error)
}

type CounterRepoImpl struct {
	db *gorm.DB
}

func NewCounterRepo(db *gorm.DB) CounterRepo {
	return &CounterRepoImpl{db: db}
}

type reconcileStmt struct {
	name string
	sql  string
}

// 每条语句只更新与边表实际数量不一致的行，RowsAffected 即漂移行数
var reconcileStmts = []reconcileStmt{
	{"profiles.followers_count", `
UPDATE profiles p SET followers_count = s.cnt
FROM (SELECT pr.id, COUNT(f.id) AS cnt FROM profiles pr LEFT JOIN follows f ON f.following_id = pr.id GROUP BY pr.id) s
WHERE p.id = s.id AND p.followers_count <> s.cnt`},
	{"profiles.following_count", `
UPDATE profiles p SET following_count = s.cnt
FROM (SELECT pr.id, COUNT(f.id) AS cnt FROM profiles pr LEFT JOIN follows f ON f.follower_id = pr.id GROUP BY pr.id) s
WHERE p.id = s.id AND p.following_count <> s.cnt`},
	{"profiles.posts_count", `
UPDATE profiles p SET posts_count = s.cnt
FROM (SELECT pr.id, COUNT(po.id) AS cnt FROM profiles pr LEFT JOIN posts po ON po.user_id = pr.id GROUP BY pr.id) s
WHERE p.id = s.id AND p.posts_count <> s.cnt`},
	{"posts.likes_count", `
UPDATE posts p SET likes_count = s.cnt
FROM (SELECT po.id, COUNT(l.id) AS cnt FROM posts po LEFT JOIN likes l ON l.post_id = po.id GROUP BY po.id) s
WHERE p.id = s.id AND p.likes_count <> s.cnt`},
	{"posts.comments_count", `
UPDATE posts p SET comments_count = s.cnt
FROM (SELECT po.id, COUNT(c.id) AS cnt FROM posts po LEFT JOIN comments c ON c.post_id = po.id GROUP BY po.id) s
WHERE p.id = s.id AND p.comments_count <> s.cnt`},
	{"comments.likes_count", `
UPDATE comments c SET likes_count = s.cnt
FROM (SELECT co.id, COUNT(l.id) AS cnt FROM comments co LEFT JOIN likes l ON l.comment_id = co.id GROUP BY co.id) s
WHERE c.id = s.id AND c.likes_count <> s.cnt`},
	{"stories.views_count", `
UPDATE stories st SET views_count = s.cnt
FROM (SELECT so.id, COUNT(v.id) AS cnt FROM stories so LEFT JOIN story_views v ON v.story_id = so.id GROUP BY so.id) s
WHERE st.id = s.id AND st.views_count <> s.cnt`},
}

// ReconcileCounters 依据边表重新计算所有冗余计数，返回各计数列被修正的行数
func (s *CounterRepoImpl) ReconcileCounters(ctx context.Context) (map[string]int64, error) {
	fixed := make(map[string]int64, len(reconcileStmts))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range reconcileStmts {
			res := tx.Exec(stmt.sql)
			if res.Error != nil {
				return res.Error
			}
			fixed[stmt.name] = res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fixed, nil
}
