package api

import (
	"Novii/internal/api/config"
	"Novii/internal/api/middleware"
	"Novii/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, cfg *config.Config, checker middleware.RevocationChecker) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.Server.AllowOrigins))
	logger.SetupGin(r, cfg.Log)

	auth := middleware.AuthMiddleware(checker)
	authOptional := middleware.AuthOptionalMiddleware(checker)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", group.AuthHandler.Register)
			authGroup.POST("/login", group.AuthHandler.Login)
			authGroup.POST("/logout", auth, group.AuthHandler.Logout)
		}

		profileGroup := apiGroup.Group("/profiles")
		{
			profileGroup.GET("/search", group.ProfileHandler.Search)

			optionalGroup := profileGroup.Group("")
			optionalGroup.Use(authOptional)
			{
				optionalGroup.GET("/:username", group.ProfileHandler.GetProfile)
				optionalGroup.GET("/:username/posts", group.ProfileHandler.GetProfilePosts)
				optionalGroup.GET("/:username/followers", group.ProfileHandler.GetFollowers)
				optionalGroup.GET("/:username/following", group.ProfileHandler.GetFollowing)
			}

			loginGroup := profileGroup.Group("")
			loginGroup.Use(auth)
			{
				loginGroup.GET("/me", group.ProfileHandler.GetMe)
				loginGroup.PUT("/me", group.ProfileHandler.UpdateMe)
				loginGroup.DELETE("/me", group.ProfileHandler.DeleteMe)
				loginGroup.GET("/suggestions", group.ProfileHandler.GetSuggestions)
			}
		}

		postGroup := apiGroup.Group("/posts")
		{
			optionalGroup := postGroup.Group("")
			optionalGroup.Use(authOptional)
			{
				optionalGroup.GET("/explore", group.PostHandler.GetExplore)
				optionalGroup.GET("/:post_id", group.PostHandler.GetPost)
				optionalGroup.GET("/:post_id/comments", group.PostHandler.GetComments)
			}

			loginGroup := postGroup.Group("")
			loginGroup.Use(auth)
			{
				loginGroup.GET("/feed", group.PostHandler.GetFeed)
				loginGroup.GET("/liked", group.PostHandler.GetLikedPosts)
				loginGroup.POST("", group.PostHandler.CreatePost)
				loginGroup.PUT("/:post_id", group.PostHandler.UpdatePost)
				loginGroup.DELETE("/:post_id", group.PostHandler.DeletePost)
				loginGroup.POST("/:post_id/like", group.PostHandler.LikePost)
				loginGroup.DELETE("/:post_id/like", group.PostHandler.UnlikePost)
				loginGroup.POST("/:post_id/save", group.PostHandler.SavePost)
				loginGroup.DELETE("/:post_id/save", group.PostHandler.UnsavePost)
				loginGroup.POST("/:post_id/comments", group.PostHandler.CreateComment)
			}
		}

		commentGroup := apiGroup.Group("/comments")
		commentGroup.Use(auth)
		{
			commentGroup.DELETE("/:comment_id", group.PostHandler.DeleteComment)
			commentGroup.POST("/:comment_id/like", group.PostHandler.LikeComment)
			commentGroup.DELETE("/:comment_id/like", group.PostHandler.UnlikeComment)
		}

		followGroup := apiGroup.Group("/follows")
		followGroup.Use(auth)
		{
			followGroup.GET("/:profile_id", group.FollowHandler.GetFollowState)
			followGroup.POST("/:profile_id", group.FollowHandler.Follow)
			followGroup.DELETE("/:profile_id", group.FollowHandler.Unfollow)
		}

		storyGroup := apiGroup.Group("/stories")
		storyGroup.Use(auth)
		{
			storyGroup.POST("", group.StoryHandler.CreateStory)
			storyGroup.GET("/active", group.StoryHandler.GetActiveStories)
			storyGroup.POST("/:story_id/view", group.StoryHandler.ViewStory)
			storyGroup.GET("/:story_id/viewers", group.StoryHandler.GetStoryViewers)
			storyGroup.DELETE("/:story_id", group.StoryHandler.DeleteStory)
		}

		messageGroup := apiGroup.Group("/messages")
		messageGroup.Use(auth)
		{
			messageGroup.POST("", group.MessageHandler.SendMessage)
			messageGroup.GET("/conversations", group.MessageHandler.GetConversations)
			messageGroup.GET("/unread", group.MessageHandler.GetUnreadCount)
			messageGroup.GET("/threads/:peer_id", group.MessageHandler.GetThread)
			messageGroup.POST("/threads/:peer_id/read", group.MessageHandler.MarkThreadRead)
		}

		notificationGroup := apiGroup.Group("/notifications")
		notificationGroup.Use(auth)
		{
			notificationGroup.GET("", group.NotificationHandler.GetNotifications)
			notificationGroup.GET("/unread", group.NotificationHandler.GetUnreadCount)
			notificationGroup.POST("/read/all", group.NotificationHandler.MarkAllAsRead)
			notificationGroup.POST("/:notification_id/read", group.NotificationHandler.MarkAsRead)
		}

		apiGroup.GET("/saved", auth, group.PostHandler.GetSavedPosts)
	}

	return r
}
