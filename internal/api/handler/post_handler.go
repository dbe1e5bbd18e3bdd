package handler

import (
	"Novii/internal/api/dto"
	"Novii/internal/pkg/response"
	"Novii/internal/service"
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PostHandler struct {
	postSvc    service.PostService
	commentSvc service.CommentService
	likeSvc    service.LikeService
	savedSvc   service.SavedPostService
}

func NewPostHandler(
	postSvc service.PostService,
	commentSvc service.CommentService,
	likeSvc service.LikeService,
	savedSvc service.SavedPostService,
) *PostHandler {
	return &PostHandler{
		postSvc:    postSvc,
		commentSvc: commentSvc,
		likeSvc:    likeSvc,
		savedSvc:   savedSvc,
	}
}

func (s *PostHandler) CreatePost(c *gin.Context) {
	var req dto.CreatePostDTO
	if !bindJSON(c, &req) {
		return
	}
	post, err := s.postSvc.CreatePost(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) GetPost(c *gin.Context) {
	postID, ok := pathUUID(c, "post_id")
	if !ok {
		return
	}
	post, err := s.postSvc.GetPost(c.Request.Context(), currentUserID(c), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) UpdatePost(c *gin.Context) {
	postID, ok := pathUUID(c, "post_id")
	if !ok {
		return
	}
	var req dto.UpdatePostDTO
	if !bindJSON(c, &req) {
		return
	}
	post, err := s.postSvc.UpdatePost(c.Request.Context(), currentUserID(c), postID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, post)
}

func (s *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := pathUUID(c, "post_id")
	if !ok {
		return
	}
	if err := s.postSvc.DeletePost(c.Request.Context(), currentUserID(c), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) GetFeed(c *gin.Context) {
	var req dto.CursorPageDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	res, err := s.postSvc.GetFeed(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *PostHandler) GetExplore(c *gin.Context) {
	page, pageSize := getPagination(c)
	res, err := s.postSvc.GetExplore(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *PostHandler) GetLikedPosts(c *gin.Context) {
	page, pageSize := getPagination(c)
	res, err := s.likeSvc.GetLikedPosts(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *PostHandler) LikePost(c *gin.Context) {
	s.postAction(c, s.likeSvc.LikePost)
}

func (s *PostHandler) UnlikePost(c *gin.Context) {
	s.postAction(c, s.likeSvc.UnlikePost)
}

func (s *PostHandler) SavePost(c *gin.Context) {
	s.postAction(c, s.savedSvc.SavePost)
}

func (s *PostHandler) UnsavePost(c *gin.Context) {
	s.postAction(c, s.savedSvc.UnsavePost)
}

func (s *PostHandler) GetSavedPosts(c *gin.Context) {
	page, pageSize := getPagination(c)
	res, err := s.savedSvc.GetSavedPosts(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *PostHandler) CreateComment(c *gin.Context) {
	postID, ok := pathUUID(c, "post_id")
	if !ok {
		return
	}
	var req dto.CreateCommentDTO
	if !bindJSON(c, &req) {
		return
	}
	comment, err := s.commentSvc.CreateComment(c.Request.Context(), currentUserID(c), postID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment)
}

func (s *PostHandler) GetComments(c *gin.Context) {
	postID, ok := pathUUID(c, "post_id")
	if !ok {
		return
	}
	page, pageSize := getPagination(c)
	res, err := s.commentSvc.GetComments(c.Request.Context(), currentUserID(c), postID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *PostHandler) DeleteComment(c *gin.Context) {
	commentID, ok := pathUUID(c, "comment_id")
	if !ok {
		return
	}
	if err := s.commentSvc.DeleteComment(c.Request.Context(), currentUserID(c), commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) LikeComment(c *gin.Context) {
	s.commentAction(c, s.likeSvc.LikeComment)
}

func (s *PostHandler) UnlikeComment(c *gin.Context) {
	s.commentAction(c, s.likeSvc.UnlikeComment)
}

type actionFunc func(ctx context.Context, userID, targetID uuid.UUID) error

func (s *PostHandler) postAction(c *gin.Context, action actionFunc) {
	postID, ok := pathUUID(c, "post_id")
	if !ok {
		return
	}
	if err := action(c.Request.Context(), currentUserID(c), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *PostHandler) commentAction(c *gin.Context, action actionFunc) {
	commentID, ok := pathUUID(c, "comment_id")
	if !ok {
		return
	}
	if err := action(c.Request.Context(), currentUserID(c), commentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
