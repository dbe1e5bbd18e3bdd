package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid         = errors.New("参数错误")
	ErrProfileNotFound      = errors.New("用户不存在")
	ErrPostNotFound         = errors.New("帖子不存在")
	ErrCommentNotFound      = errors.New("评论不存在")
	ErrStoryNotFound        = errors.New("快拍不存在或已过期")
	ErrNotificationNotFound = errors.New("通知不存在")
	ErrActionDuplicate      = errors.New("重复操作")
	ErrFollowSelf           = errors.New("不能关注自己")
	ErrMessageSelf          = errors.New("不能给自己发私信")
	ErrUsernameExist        = errors.New("用户名已存在")
	ErrEmailExist           = errors.New("邮箱已注册")
	ErrCredentialInvalid    = errors.New("邮箱或密码错误")
	ErrProfilePrivate       = errors.New("该账号为私密账号")
	ErrContentTooLong       = errors.New("内容过长")
	ErrContentEmpty         = errors.New("内容不能为空")
	UnauthorizedError       = errors.New("未登录或登录已过期")
	ErrForbidden            = errors.New("权限不足")
	UnExpectedError         = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:         BadRequest,
	ErrProfileNotFound:      NotFound,
	ErrPostNotFound:         NotFound,
	ErrCommentNotFound:      NotFound,
	ErrStoryNotFound:        NotFound,
	ErrNotificationNotFound: NotFound,
	ErrActionDuplicate:      Conflict,
	ErrFollowSelf:           BadRequest,
	ErrMessageSelf:          BadRequest,
	ErrUsernameExist:        Conflict,
	ErrEmailExist:           Conflict,
	ErrCredentialInvalid:    Unauthorized,
	ErrProfilePrivate:       Forbidden,
	ErrContentTooLong:       BadRequest,
	ErrContentEmpty:         BadRequest,
	UnauthorizedError:       Unauthorized,
	ErrForbidden:            Forbidden,
	UnExpectedError:         InternalServerError,
}
