package util

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

var ErrCursorInvalid = errors.New("invalid cursor")

// EncodeCursor 将排序值数组编码为 Base64 字符串
func EncodeCursor(sortValues []interface{}) string {
	if len(sortValues) == 0 {
		return ""
	}
	b, _ := json.Marshal(sortValues)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor 将前端传来的 Base64 字符串解码为排序值数组
func DecodeCursor(cursor string) ([]interface{}, error) {
	if cursor == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrCursorInvalid
	}
	var sortValues []interface{}
	if err = json.Unmarshal(b, &sortValues); err != nil {
		return nil, ErrCursorInvalid
	}
	return sortValues, nil
}

// EncodeTimeCursor 以 (created_at, id) 生成翻页游标
func EncodeTimeCursor(createdAt time.Time, id uuid.UUID) string {
	return EncodeCursor([]interface{}{createdAt.UTC().Format(time.RFC3339Nano), id.String()})
}

// DecodeTimeCursor 解析 EncodeTimeCursor 生成的游标，空字符串返回 ok=false
func DecodeTimeCursor(cursor string) (time.Time, uuid.UUID, bool, error) {
	values, err := DecodeCursor(cursor)
	if err != nil {
		return time.Time{}, uuid.Nil, false, err
	}
	if values == nil {
		return time.Time{}, uuid.Nil, false, nil
	}
	if len(values) != 2 {
		return time.Time{}, uuid.Nil, false, ErrCursorInvalid
	}
	ts, ok1 := values[0].(string)
	idStr, ok2 := values[1].(string)
	if !ok1 || !ok2 {
		return time.Time{}, uuid.Nil, false, ErrCursorInvalid
	}
	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, uuid.Nil, false, ErrCursorInvalid
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return time.Time{}, uuid.Nil, false, ErrCursorInvalid
	}
	return createdAt, id, true, nil
}
