package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"order-board-service/internal/alert"
	"order-board-service/internal/board"
	"order-board-service/internal/config"
	"order-board-service/internal/controller"
	"order-board-service/internal/feed"
	"order-board-service/internal/model"
	"order-board-service/internal/printer"
	"order-board-service/internal/repository"
	"order-board-service/internal/service"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// MongoDB connection
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDBName)

	deliveryFee, err := model.MoneyFromString(cfg.DeliveryFee)
	if err != nil {
		logger.Fatal("invalid DELIVERY_FEE", zap.Error(err))
	}

	// Repository and services
	repo := repository.NewMongoOrderRepository(db)
	orderService := service.NewOrderService(repo, deliveryFee, logger)

	// RabbitMQ connection for operator alerts
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Fatal("rabbitmq connect failed", zap.Error(err))
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("rabbitmq channel failed", zap.Error(err))
	}

	emitter, err := alert.NewEmitter(ch, cfg.AlertExchange, cfg.DesktopAlerts, logger)
	if err != nil {
		logger.Fatal("alert emitter setup failed", zap.Error(err))
	}

	// Live board fed by the change stream
	listener := feed.NewListener(repo, logger)
	liveBoard := board.New(logger, emitter)

	go func() {
		if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("listener stopped", zap.Error(err))
		}
	}()
	go func() {
		if err := liveBoard.Run(ctx, listener.Deltas()); err != nil && ctx.Err() == nil {
			logger.Error("board stopped", zap.Error(err))
		}
	}()

	renderer, err := printer.NewRenderer(cfg.RestaurantName)
	if err != nil {
		logger.Fatal("receipt renderer setup failed", zap.Error(err))
	}

	// Router
	r := gin.Default()
	controller.NewOrderController(orderService, liveBoard, renderer).Register(r)

	logger.Info("order board service listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
