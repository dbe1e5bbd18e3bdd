package dto

// Response 统一返回结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// PageDTO 分页参数
type PageDTO struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// CursorPageDTO 游标分页参数
type CursorPageDTO struct {
	Cursor   string `form:"cursor"`
	PageSize int    `form:"page_size"`
}

// ListDTO 分页列表返回
type ListDTO[T any] struct {
	List    []*T `json:"list"`
	HasMore bool `json:"has_more"`
}

// CursorListDTO 游标分页列表返回
type CursorListDTO[T any] struct {
	List       []*T   `json:"list"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}
