package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gartstein/contracto/internal/contract/controller"
	gorm "github.com/gartstein/contracto/internal/contract/db"
	"github.com/gartstein/contracto/internal/contract/domain"
	"github.com/gartstein/contracto/internal/contract/events"
	"github.com/gartstein/contracto/internal/contract/handlers"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config struct for YAML configuration
type Config struct {
	HTTPPort         int      `yaml:"HTTP_PORT"`
	DBHost           string   `yaml:"DB_HOST"`
	DBPort           int      `yaml:"DB_PORT"`
	DBUser           string   `yaml:"DB_USER"`
	DBPassword       string   `yaml:"DB_PASSWORD"`
	DBName           string   `yaml:"DB_NAME"`
	DBSSLMode        string   `yaml:"DB_SSLMODE"`
	KafkaBrokers     []string `yaml:"KAFKA_BROKERS"`
	JWTSecret        string   `yaml:"JWT_SECRET"`
	Topic            string   `yaml:"TOPIC"`
	EventQueueSize   int      `yaml:"EVENT_QUEUE_SIZE"`
	NotifyRecipients []string `yaml:"NOTIFY_RECIPIENTS"`
}

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		err := logger.Sync()
		if err != nil {
			logger.Error("failed to sync logger", zap.Error(err))
		}
	}(logger)

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	dbConf := initDatabase(cfg)
	repo, err := gorm.NewRepository(dbConf)
	if err != nil {
		log.Fatal("failed to initialize database", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close database", zap.Error(err))
		}
	}()

	relay, err := events.NewKafkaRelay(cfg.KafkaBrokers, cfg.Topic, logger)
	if err != nil {
		log.Fatal("failed to initialize Kafka relay", err)
	}
	defer relay.Close()

	publisher := initPublisher(cfg, relay, logger)
	queued := events.NewQueuedPublisher(publisher, cfg.EventQueueSize, logger)
	queued.Start()

	contractSvc := controller.NewContractService(repo, queued, logger)

	contractHandler := handlers.NewContractHandler(contractSvc, logger)
	server := handlers.NewServer(cfg.HTTPPort, contractHandler, cfg.JWTSecret, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	waitForShutdown(server, queued, logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// loadConfig loads configuration. Use real config tooling (e.g. Viper) in production.
func loadConfig() (*Config, error) {
	configPath := filepath.Join("internal", "contract", "config", "config.yaml")
	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// initDatabase initializes the database connection.
func initDatabase(cfg *Config) *gorm.Config {
	return &gorm.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
}

// initPublisher wires the in-process handlers and the Kafka relay into a
// publisher. The relay is global so every event reaches the topic; audit and
// notification handlers subscribe only to the event types they care about.
func initPublisher(cfg *Config, relay *events.KafkaRelay, logger *zap.Logger) *events.Publisher {
	publisher := events.NewPublisher(logger)
	publisher.RegisterGlobal(relay)

	audit := events.NewAuditHandler(nil, logger)
	for _, eventType := range []string{
		domain.EventContractCreated,
		domain.EventContractActivated,
		domain.EventContractCompleted,
		domain.EventContractTerminated,
	} {
		publisher.Register(eventType, audit)
	}

	notify := events.NewNotificationHandler(nil, cfg.NotifyRecipients, logger)
	for _, eventType := range []string{
		domain.EventContractActivated,
		domain.EventContractCompleted,
		domain.EventContractTerminated,
	} {
		publisher.Register(eventType, notify)
	}
	return publisher
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then
// drains the event queue and shuts the server down.
func waitForShutdown(server *handlers.Server, queued *events.QueuedPublisher, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	queued.Stop()
	logger.Info("server stopped properly")
}
