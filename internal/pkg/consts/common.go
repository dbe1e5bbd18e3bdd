package consts

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage 偏移分页的页码上限，更深的数据走游标接口
	MaxPage = 1000
)

// 文本长度上限，按 rune 计
const (
	MaxBioLength      = 150
	MaxCaptionLength  = 2200
	MaxCommentLength  = 1000
	MaxMessageLength  = 2000
	MaxFullNameLength = 64
)

const (
	SuggestionLimit = 10
	SearchLimit     = 20
)
