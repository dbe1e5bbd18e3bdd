package util

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	mentionRegex  = regexp.MustCompile(`(?:^|[^\w@])@([a-z0-9._]{3,30})`)
	usernameRegex = regexp.MustCompile(`^[a-z0-9._]{3,30}$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var strictPolicy = bluemonday.StrictPolicy()

// ExtractMentions 提取去重后的 @用户名 列表，保持出现顺序
func ExtractMentions(rawContent string) []string {
	matches := mentionRegex.FindAllStringSubmatch(strings.ToLower(rawContent), -1)

	mentionSet := make(map[string]struct{})
	var mentions []string

	for _, m := range matches {
		if len(m) > 1 {
			name := strings.TrimRight(m[1], ".")

			if len(name) >= 3 {
				if _, exists := mentionSet[name]; !exists {
					mentionSet[name] = struct{}{}
					mentions = append(mentions, name)
				}
			}
		}
	}

	return mentions
}

// SanitizeText 去除 HTML 标签与首尾空白
func SanitizeText(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// SanitizePtr 对可选文本做清洗，清洗后为空则返回 nil
func SanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := SanitizeText(*s)
	if clean == "" {
		return nil
	}
	return &clean
}

// 与 /profiles 下的静态路由同名，无法按用户名访问
var reservedUsernames = map[string]struct{}{
	"me":          {},
	"search":      {},
	"suggestions": {},
}

// ValidUsername 校验已规范化（小写）的用户名
func ValidUsername(username string) bool {
	if _, ok := reservedUsernames[username]; ok {
		return false
	}
	return usernameRegex.MatchString(username)
}

// NormalizeUsername 用户名统一去除首尾空白并转为小写
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// RuneLen 按字符计算长度
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// PtrString 用于将 string 转换为 *string
func PtrString(s string) *string {
	return &s
}

// DerefString 空指针返回空字符串
func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
