package handler

import (
	"Novii/internal/api/dto"
	"Novii/internal/pkg/response"
	"Novii/internal/service"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileSvc service.ProfileService
	postSvc    service.PostService
	followSvc  service.FollowService
}

func NewProfileHandler(profileSvc service.ProfileService, postSvc service.PostService, followSvc service.FollowService) *ProfileHandler {
	return &ProfileHandler{
		profileSvc: profileSvc,
		postSvc:    postSvc,
		followSvc:  followSvc,
	}
}

func (s *ProfileHandler) GetMe(c *gin.Context) {
	userID := currentUserID(c)
	profile, err := s.profileSvc.GetProfileByID(c.Request.Context(), userID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

func (s *ProfileHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileDTO
	if !bindJSON(c, &req) {
		return
	}
	profile, err := s.profileSvc.UpdateProfile(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

func (s *ProfileHandler) DeleteMe(c *gin.Context) {
	if err := s.profileSvc.DeleteProfile(c.Request.Context(), currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := s.profileSvc.GetProfileByUsername(c.Request.Context(), currentUserID(c), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

func (s *ProfileHandler) GetProfilePosts(c *gin.Context) {
	page, pageSize := getPagination(c)
	res, err := s.postSvc.GetUserPosts(c.Request.Context(), currentUserID(c), c.Param("username"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *ProfileHandler) GetFollowers(c *gin.Context) {
	page, pageSize := getPagination(c)
	res, err := s.followSvc.GetFollowers(c.Request.Context(), currentUserID(c), c.Param("username"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *ProfileHandler) GetFollowing(c *gin.Context) {
	page, pageSize := getPagination(c)
	res, err := s.followSvc.GetFollowing(c.Request.Context(), currentUserID(c), c.Param("username"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *ProfileHandler) Search(c *gin.Context) {
	var req dto.SearchProfileDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	res, err := s.profileSvc.SearchProfiles(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *ProfileHandler) GetSuggestions(c *gin.Context) {
	res, err := s.profileSvc.GetSuggestions(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
