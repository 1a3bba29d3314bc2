package main

import (
	"bufio"
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"packtrace/internal/agent/classifier"
	"packtrace/internal/agent/config"
	"packtrace/internal/agent/monitor"
	"packtrace/internal/agent/queue"
	"packtrace/internal/agent/transport"
	"packtrace/internal/logger"
	"packtrace/internal/models"
)

const (
	agentVersion    = "1.0.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	defaultConfig := os.Getenv("AGENT_CONFIG")
	if defaultConfig == "" {
		defaultConfig = "configs/station.yml"
	}
	configPath := flag.String("config", defaultConfig, "path to the station config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading station config", "err", err)
	}

	log := logger.Get(cfg.LogLevel)
	log.Infow("station agent starting",
		"station_uid", cfg.StationUID, "version", agentVersion)

	meta := &models.StationMeta{
		AgentVersion: agentVersion,
		IPv4:         localIPv4(),
	}

	client := transport.New(cfg.APIEndpoint, cfg.RequestTimeout, log.Named("transport"))

	cls, err := classifier.New(cfg, meta)
	if err != nil {
		log.Fatalw("invalid barcode patterns", "err", err)
	}

	q := queue.New(client, cfg.Queue.Capacity, log.Named("queue"))

	discovery := monitor.NewStationDiscovery(cfg, cfg.RequestTimeout)
	mon := monitor.New(cfg, client, discovery, meta, log.Named("monitor"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go q.Run(ctx, cfg.Queue.DrainInterval)
	go mon.Run(ctx, cfg.HealthCheckInterval)
	go mon.RunHeartbeat(ctx, cfg.HeartbeatInterval)
	go readScans(cls, q, log)

	waitForShutdown(cancel, q, log)
}

// readScans consumes scanner input line by line until stdin closes. Lines
// that match no pattern are logged and dropped.
func readScans(cls *classifier.Classifier, q *queue.DeliveryQueue, log *logger.Logger) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		raw := sc.Text()
		ev := cls.Classify(raw)
		if ev == nil {
			log.Warnw("unclassified_scan_dropped", "raw", raw)
			continue
		}
		log.Infow("scan_captured",
			"event_type", ev.EventType, "order_no", ev.OrderNo)
		q.Enqueue(*ev)
	}
	if err := sc.Err(); err != nil {
		log.Errorw("scan input closed", "err", err)
	}
}

// waitForShutdown stops the timers on the first signal, then makes one
// bounded attempt to flush queued events before exiting.
func waitForShutdown(cancel context.CancelFunc, q *queue.DeliveryQueue, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down agent...")
	cancel()

	ctx, flushCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer flushCancel()
	q.Shutdown(ctx)
}

// localIPv4 finds the interface address used to reach the network. No packet
// is sent; the dial only selects a route.
func localIPv4() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return ""
	}
	defer func() { _ = conn.Close() }()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return ""
}
