package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/broker"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/config"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/consumer"
	"github.com/grodansparadis/vscp-demo-proximity-sensor/internal/database"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.LoadCollector(logger)
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	logger.Printf("[boot] collector | mqtt=%s namespace=%s kafka=%v influx=%s",
		cfg.MQTTBrokerURL, cfg.MQTTNamespace, cfg.KafkaBrokers, cfg.InfluxURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupGracefulShutdown(cancel, logger)

	if err := broker.EnsureKafkaTopics(ctx, cfg); err != nil {
		logger.Fatalf("kafka ensure topics error: %v", err)
	}

	producer := broker.NewKafkaProducer(cfg)
	defer producer.Close()

	db := database.NewInfluxDB(cfg)
	defer db.Close()

	client := consumer.BuildMQTTClient(cfg, producer, db)
	consumer.ConnectWithBackoff(ctx, cfg, client, 2*time.Second, 30*time.Second)

	<-ctx.Done()
	client.Disconnect(250)
	logger.Printf("[shutdown] collector stopped")
}

func setupGracefulShutdown(cancel context.CancelFunc, logger *log.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigCh
		logger.Printf("[shutdown] received signal: %v", s)
		cancel()
	}()
}
