package model

import "github.com/google/uuid"

// ensureID 未显式指定主键时生成 UUID v4
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// IDs 提取实体主键，保持原有顺序
func IDs[T any](items []*T, get func(*T) uuid.UUID) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, get(item))
	}
	return ids
}
