package wire

import (
	"Novii/internal/api"
	"Novii/internal/api/config"
	"Novii/internal/api/handler"
	"Novii/internal/job"
	"Novii/internal/pkg/cache"
	"Novii/internal/pkg/cron"
	"Novii/internal/pkg/kafka"
	"Novii/internal/repository"
	"Novii/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	CronMgr      *cron.Manager
	KafkaManager *kafka.ConsumerManager
	Producer     *kafka.EventProducer
}

// BuildApplication profileIndex 可为 nil；Kafka 未启用时事件在进程内直接投递
func BuildApplication(db *gorm.DB, cfg *config.Config, store cache.Store, profileIndex service.ProfileIndex) (*ApplicationContainer, error) {
	profileRepo := repository.NewProfileRepo(db)
	postRepo := repository.NewPostRepo(db)
	commentRepo := repository.NewCommentRepo(db)
	likeRepo := repository.NewLikeRepo(db)
	followRepo := repository.NewFollowRepo(db)
	storyRepo := repository.NewStoryRepo(db)
	messageRepo := repository.NewMessageRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	savedPostRepo := repository.NewSavedPostRepo(db)
	counterRepo := repository.NewCounterRepo(db)

	notificationService := service.NewNotificationService(notificationRepo, profileRepo, followRepo, store)

	app := &ApplicationContainer{DB: db}

	var publisher service.EventPublisher = service.NewDirectPublisher(notificationService)
	if cfg.Kafka.Enable {
		producer, err := kafka.NewEventProducer(cfg)
		if err != nil {
			return nil, err
		}
		kafkaMgr, err := kafka.NewConsumerManager(cfg, notificationService)
		if err != nil {
			_ = producer.Close()
			return nil, err
		}
		publisher = producer
		app.Producer = producer
		app.KafkaManager = kafkaMgr
	}

	authService := service.NewAuthService(profileRepo, store, profileIndex)
	profileService := service.NewProfileService(profileRepo, followRepo, store, profileIndex)
	postService := service.NewPostService(postRepo, profileRepo, followRepo, likeRepo, savedPostRepo, publisher)
	commentService := service.NewCommentService(commentRepo, postRepo, profileRepo, likeRepo, followRepo, publisher)
	likeService := service.NewLikeService(likeRepo, postRepo, commentRepo, profileRepo, followRepo, savedPostRepo, publisher)
	followService := service.NewFollowService(followRepo, profileRepo, publisher)
	storyService := service.NewStoryService(
		storyRepo, followRepo, profileRepo,
		time.Duration(cfg.Story.TTL)*time.Hour,
		time.Duration(cfg.Story.Retention)*time.Hour,
	)
	messageService := service.NewMessageService(messageRepo, profileRepo, store)
	savedPostService := service.NewSavedPostService(savedPostRepo, postRepo, profileRepo, likeRepo, followRepo)

	handlers := &api.HandlersGroup{
		AuthHandler:         handler.NewAuthHandler(authService),
		ProfileHandler:      handler.NewProfileHandler(profileService, postService, followService),
		PostHandler:         handler.NewPostHandler(postService, commentService, likeService, savedPostService),
		FollowHandler:       handler.NewFollowHandler(followService),
		StoryHandler:        handler.NewStoryHandler(storyService),
		MessageHandler:      handler.NewMessageHandler(messageService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
	}
	app.Router = api.SetupRouter(handlers, cfg, authService)

	app.CronMgr = cron.NewCronManager(
		job.NewCounterReconcileJob(counterRepo, store),
		job.NewStorySweepJob(storyService, store),
		cfg.Cron.CounterReconcile,
		cfg.Cron.StorySweep,
	)

	return app, nil
}
