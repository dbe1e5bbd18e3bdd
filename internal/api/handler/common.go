package handler

import (
	"Novii/internal/api/middleware"
	"Novii/internal/pkg/consts"
	"Novii/internal/pkg/response"
	"Novii/internal/pkg/util"
	"Novii/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentUserID 当前登录用户，未登录时为 uuid.Nil
func currentUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(middleware.UserIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// pathUUID 解析路径参数中的 UUID，失败时直接返回参数错误
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return uuid.Nil, false
	}
	return id, true
}

func getPagination(c *gin.Context) (int, int) {
	pageStr := c.DefaultQuery("page", "1")
	pageSizeStr := c.DefaultQuery("page_size", strconv.Itoa(consts.DefaultPageSize))

	page, err := strconv.Atoi(pageStr)
	if err != nil {
		page = 1
	}
	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil {
		pageSize = consts.DefaultPageSize
	}
	return page, pageSize
}

// bindJSON 解析并校验请求体
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return false
	}
	if err := util.ValidateDTO(req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return false
	}
	return true
}
