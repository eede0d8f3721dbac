package main

import (
	// Go Internal Packages
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	// Local Packages
	config "tx-pipeline/config"
	kafka "tx-pipeline/kafka"
	mongodb "tx-pipeline/repositories/mongodb"
	redis "tx-pipeline/repositories/redis"
	events "tx-pipeline/services/events"
	pipeline "tx-pipeline/services/pipeline"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"go.uber.org/zap"
)

// LoadConfig loads the default configuration and overrides it with the config file
// specified by the path defined in the config flag
func LoadConfig() *koanf.Koanf {
	configPathMsg := "Path to the application config file"
	configPath := kingpin.Flag("config", configPathMsg).Short('c').Default("config.yml").String()

	kingpin.Parse()
	k := koanf.New(".")
	_ = k.Load(rawbytes.Provider(config.DefaultConfig), yaml.Parser())
	if *configPath != "" {
		_ = k.Load(file.Provider(*configPath), yaml.Parser())
	}
	return k
}

func main() {
	k := LoadConfig()
	appKonf := config.Config{}

	// Unmarshalling config into struct
	err := k.Unmarshal("", &appKonf)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Validate the config loaded
	if err = appKonf.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if !appKonf.IsProdMode {
		k.Print()
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "logfmt"
	_ = cfg.Level.UnmarshalText([]byte(k.String("logger.level")))
	cfg.InitialFields = make(map[string]any)
	cfg.InitialFields["host"], _ = os.Hostname()
	cfg.InitialFields["service"] = appKonf.Application
	cfg.OutputPaths = []string{"stdout"}
	logger, _ := cfg.Build()
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Mongo Connection
	mongoClient, err := mongodb.Connect(ctx, appKonf.Mongo.URI)
	if err != nil {
		logger.Fatal("cannot create mongo client", zap.Error(err))
	}

	// Redis Connection
	redisClient, err := redis.Connect(ctx, appKonf.Redis.URI, appKonf.Redis.Password)
	if err != nil {
		logger.Fatal("cannot create redis client", zap.Error(err))
	}

	executions := mongodb.NewExecutionRepository(mongoClient, appKonf.Mongo.Database)
	if err = executions.EnsureIndexes(ctx); err != nil {
		logger.Fatal("cannot create execution indexes", zap.Error(err))
	}

	ledger := redis.NewLedgerRepository(redisClient, logger)
	channels := redis.NewPublisherRepository(redisClient, logger)

	producer, err := kafka.NewProducer(appKonf.Kafka.Brokers, appKonf.Kafka.Topic, logger)
	if err != nil {
		logger.Fatal("cannot create audit producer", zap.Error(err))
	}
	defer producer.Close()

	publisher := events.NewPublisher(channels, producer, logger)
	orchestrator := pipeline.NewOrchestrator(executions, ledger, publisher, logger, appKonf.Pipeline)
	runner := pipeline.NewRunner(executions, orchestrator, logger, appKonf.Pipeline)

	err = runner.Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("pipeline runner stopped", zap.Error(err))
	}
}
