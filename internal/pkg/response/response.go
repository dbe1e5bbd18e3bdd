package response

import (
	"Novii/internal/api/dto"
	"Novii/internal/service"
	"errors"
	"io"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	Ok                  = 200
	BadRequest          = service.BadRequest
	Unauthorized        = service.Unauthorized
	Forbidden           = service.Forbidden
	NotFound            = service.NotFound
	Conflict            = service.Conflict
	InternalServerError = service.InternalServerError
)

// Success 成功返回封装
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败返回封装，HTTP 状态码恒为 200，业务码放在 code 中
func Fail(c *gin.Context, businessCode int, message string) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    businessCode,
		Message: message,
	})
}

// Error 将错误映射为业务码，未登记的错误统一记为系统异常
func Error(c *gin.Context, err error) {
	if code, message, ok := classify(err); ok {
		Fail(c, code, message)
		return
	}
	log.ErrorContext(c.Request.Context(), "Unhandled error", "path", c.FullPath(), "err", err)
	Fail(c, InternalServerError, service.UnExpectedError.Error())
}

func classify(err error) (int, string, bool) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return BadRequest, service.ErrParamInvalid.Error(), true
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	if errors.As(err, &typeErr) || errors.As(err, &syntaxErr) {
		return BadRequest, "Json错误", true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return BadRequest, "请求体为空", true
	}

	if code, ok := service.ErrorMap[err]; ok {
		return code, err.Error(), true
	}
	for target, code := range service.ErrorMap {
		if errors.Is(err, target) {
			return code, target.Error(), true
		}
	}
	return 0, "", false
}
