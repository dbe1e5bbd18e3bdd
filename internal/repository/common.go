package repository

import (
	"Novii/internal/pkg/database"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDuplicate        = errors.New("record already exists")
	ErrReferenceMissing = errors.New("referenced record does not exist")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrEmailTaken       = errors.New("email already registered")
)

// Cursor 基于 (created_at, id) 的键集分页游标，按时间倒序
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// translateError 将 PostgreSQL 约束错误转换为仓储层错误
func translateError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case database.IsUniqueViolation(err):
		switch database.ConstraintName(err) {
		case "uq_profiles_username":
			return ErrUsernameTaken
		case "uq_accounts_email":
			return ErrEmailTaken
		}
		return fmt.Errorf("%w: %s", ErrDuplicate, database.ConstraintName(err))
	case database.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", ErrReferenceMissing, database.ConstraintName(err))
	}
	return err
}

// adjustCounter 原子增减计数列，结果不小于 0
func adjustCounter(tx *gorm.DB, table, column string, id uuid.UUID, delta int) error {
	return tx.Table(table).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr("GREATEST("+column+" + ?, 0)", delta)).Error
}

func applyCursor(db *gorm.DB, cursor *Cursor, prefix string) *gorm.DB {
	if cursor == nil {
		return db
	}
	return db.Where("("+prefix+"created_at, "+prefix+"id) < (?, ?)", cursor.CreatedAt, cursor.ID)
}

// idSet 将主键列表转换为集合
func idSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
