package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campus-sync/internal/blob"
	"campus-sync/internal/config"
	"campus-sync/internal/conversation"
	"campus-sync/internal/db"
	"campus-sync/internal/handlers"
	"campus-sync/internal/middleware"
	"campus-sync/internal/notify"
	"campus-sync/internal/observability"
	"campus-sync/internal/presence"
	"campus-sync/internal/rabbitmq"
	"campus-sync/internal/repositories"
	"campus-sync/internal/telemetry"
	"campus-sync/internal/ws"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	blobs, err := blob.Open(cfg.BlobDir, cfg.BlobBaseURL)
	if err != nil {
		log.Fatalf("failed to open blob store: %v", err)
	}
	defer blobs.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("event publisher mode: %s", rabbitmq.PublisherMode(publisher))

	if cfg.AMQPURL != "" {
		if amqpPub, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange); err == nil {
			observability.SetPublisher(amqpPub)
			defer amqpPub.Close()
		} else {
			log.Printf("observability publisher unavailable: %v", err)
		}
	}

	audit := telemetry.NewAuditEmitter(publisher, "audit.campus-sync", "campus-sync", cfg.Environment)

	userRepo := repositories.NewUserRepo(database)
	connRepo := repositories.NewConnectionRepo(database)
	convRepo := repositories.NewConversationRepo(database)
	msgRepo := repositories.NewMessageRepo(database)
	notifRepo := repositories.NewNotificationRepo(database)
	postRepo := repositories.NewPostRepo(database)
	noticeRepo := repositories.NewNoticeRepo(database)
	eventRepo := repositories.NewEventRepo(database)

	// Public channels exist before anyone posts to them. Idempotent, so
	// restarts and config edits are safe.
	for _, name := range cfg.DefaultChannels {
		id := conversation.ChannelID(name)
		if id == "" {
			log.Printf("skipping unusable channel name %q", name)
			continue
		}
		if err := convRepo.EnsureChannel(context.Background(), id, name); err != nil {
			log.Fatalf("failed to seed channel %s: %v", id, err)
		}
	}

	hub := ws.NewHub()
	tracker := presence.NewTracker()
	tokens := middleware.NewTokenManager(cfg.JWTSecret, 0)
	dispatcher := notify.NewDispatcher(notifRepo, userRepo, hub, cfg.BroadcastWorkers, cfg.BroadcastRetries)

	// Fan presence transitions out to every watching websocket.
	statuses, cancel := tracker.Subscribe()
	defer cancel()
	go func() {
		for st := range statuses {
			hub.BroadcastPresence(st)
		}
	}()

	authHandler := handlers.NewAuthHandler(userRepo, tokens, tracker, cfg.AllowedDomain, audit)
	userHandler := handlers.NewUserHandler(userRepo)
	connHandler := handlers.NewConnectionHandler(connRepo, userRepo, dispatcher)
	convHandler := handlers.NewConversationHandler(convRepo, connRepo, msgRepo, blobs)
	msgHandler := handlers.NewMessageHandler(convRepo, connRepo, msgRepo, userRepo, blobs, hub)
	notifHandler := handlers.NewNotificationHandler(notifRepo)
	postHandler := handlers.NewPostHandler(postRepo, userRepo, msgRepo, convRepo, connRepo, dispatcher, blobs, hub)
	noticeHandler := handlers.NewNoticeHandler(noticeRepo, userRepo, dispatcher)
	eventHandler := handlers.NewEventHandler(eventRepo, userRepo, dispatcher)
	uploadHandler := handlers.NewUploadHandler(blobs)

	convWS := ws.NewConversationWebSocketHandler(hub, convRepo, connRepo, msgRepo, tokens)
	presenceWS := ws.NewPresenceWebSocketHandler(hub, tracker, tokens)
	inboxWS := ws.NewInboxWebSocketHandler(hub, tokens)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(tokens)

	router.POST("/auth/session", authHandler.Login)
	router.DELETE("/auth/session", authMiddleware, authHandler.Logout)

	router.GET("/users", authMiddleware, userHandler.ListUsers)
	router.GET("/users/:user_id", authMiddleware, userHandler.GetUser)
	router.PATCH("/users/:user_id", authMiddleware, userHandler.UpdateProfile)

	router.POST("/connections/requests", authMiddleware, connHandler.SendRequest)
	router.POST("/connections/requests/:peer_id/accept", authMiddleware, connHandler.AcceptRequest)
	router.DELETE("/connections/requests/:peer_id", authMiddleware, connHandler.CancelRequest)
	router.DELETE("/connections/:peer_id", authMiddleware, connHandler.Disconnect)
	router.GET("/connections", authMiddleware, connHandler.ListConnections)

	router.GET("/channels", authMiddleware, convHandler.ListChannels)
	router.GET("/dm/:peer_id", authMiddleware, convHandler.ResolveDM)
	router.POST("/groups", authMiddleware, convHandler.CreateGroup)
	router.GET("/groups", authMiddleware, convHandler.ListGroups)
	router.GET("/groups/:group_id", authMiddleware, convHandler.GetGroup)
	router.POST("/groups/:group_id/members", authMiddleware, convHandler.AddMembers)
	router.DELETE("/groups/:group_id/members/:member_id", authMiddleware, convHandler.RemoveMember)
	router.DELETE("/groups/:group_id", authMiddleware, convHandler.DeleteGroup)

	router.GET("/conversations/:conversation_id/messages", authMiddleware, msgHandler.ListMessages)
	router.POST("/conversations/:conversation_id/messages", authMiddleware, msgHandler.PostMessage)
	router.DELETE("/conversations/:conversation_id/messages/:message_id", authMiddleware, msgHandler.DeleteMessage)

	router.GET("/notifications", authMiddleware, notifHandler.ListInbox)
	router.POST("/notifications/:notification_id/read", authMiddleware, notifHandler.MarkRead)
	router.POST("/notifications/read-all", authMiddleware, notifHandler.MarkAllRead)
	router.DELETE("/notifications/:notification_id", authMiddleware, notifHandler.Delete)

	router.POST("/posts", authMiddleware, postHandler.CreatePost)
	router.GET("/posts", authMiddleware, postHandler.ListPosts)
	router.GET("/posts/:post_id", authMiddleware, postHandler.GetPost)
	router.DELETE("/posts/:post_id", authMiddleware, postHandler.DeletePost)
	router.POST("/posts/:post_id/like", authMiddleware, postHandler.ToggleLike)
	router.POST("/posts/:post_id/comments", authMiddleware, postHandler.AddComment)
	router.GET("/posts/:post_id/comments", authMiddleware, postHandler.ListComments)
	router.POST("/posts/:post_id/share", authMiddleware, postHandler.SharePost)

	router.POST("/notices", authMiddleware, noticeHandler.CreateNotice)
	router.GET("/notices", authMiddleware, noticeHandler.ListNotices)
	router.POST("/notices/:notice_id/pin", authMiddleware, noticeHandler.SetPinned)
	router.DELETE("/notices/:notice_id", authMiddleware, noticeHandler.DeleteNotice)

	router.POST("/events", authMiddleware, eventHandler.CreateEvent)
	router.GET("/events", authMiddleware, eventHandler.ListEvents)
	router.DELETE("/events/:event_id", authMiddleware, eventHandler.DeleteEvent)

	router.POST("/uploads", authMiddleware, uploadHandler.Upload)
	router.GET("/blobs/*ref", uploadHandler.Serve)

	router.GET("/ws/conversations/:conversation_id", convWS.Handle)
	router.GET("/ws/presence", presenceWS.Handle)
	router.GET("/ws/inbox", inboxWS.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, tracker, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
