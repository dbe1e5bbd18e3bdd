package api

import "Novii/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	AuthHandler         *handler.AuthHandler
	ProfileHandler      *handler.ProfileHandler
	PostHandler         *handler.PostHandler
	FollowHandler       *handler.FollowHandler
	StoryHandler        *handler.StoryHandler
	MessageHandler      *handler.MessageHandler
	NotificationHandler *handler.NotificationHandler
}
