package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/foxtools/foxessctl/internal/foxess"
)

const (
	defaultListen   = ":9101"
	defaultInterval = time.Minute
	publishTimeout  = 45 * time.Second
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("FOXESS_DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := foxess.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	session := foxess.NewSession(cfg, foxess.NewClient(cfg, log.Logger))
	session.Authenticate()

	collector := foxess.NewMetricsCollector(session, log.Logger)
	prometheus.MustRegister(collector)

	if mqttCfg, enabled := foxess.MQTTFromEnv(); enabled {
		publisher, err := foxess.NewPublisher(mqttCfg)
		if err != nil {
			log.Fatal().Err(err).Str("broker", mqttCfg.Broker).Msg("mqtt connect failed")
		}
		defer publisher.Close()
		go publishLoop(collector, publisher, scrapeInterval())
		log.Info().Str("broker", mqttCfg.Broker).Msg("publishing telemetry to mqtt")
	}

	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	listen := os.Getenv("FOXESS_LISTEN")
	if listen == "" {
		listen = defaultListen
	}
	log.Info().Str("listen", listen).Msg("starting foxess exporter")
	log.Fatal().Err(http.ListenAndServe(listen, nil)).Msg("http server stopped")
}

func publishLoop(collector *foxess.MetricsCollector, publisher *foxess.Publisher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for ; ; <-ticker.C {
		// shares the collector's cached snapshot so the vendor sees
		// one round trip per interval even with scraping enabled
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		device, points, err := collector.Snapshot(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("telemetry fetch failed")
			continue
		}
		if err := publisher.PublishRealtime(device, points); err != nil {
			log.Warn().Err(err).Str("device_sn", device.SerialNumber).Msg("mqtt publish failed")
		}
	}
}

func scrapeInterval() time.Duration {
	raw := os.Getenv("FOXESS_SCRAPE_INTERVAL")
	if raw == "" {
		return defaultInterval
	}
	interval, err := time.ParseDuration(raw)
	if err != nil || interval <= 0 {
		log.Warn().Str("value", raw).Msg("invalid FOXESS_SCRAPE_INTERVAL, using default")
		return defaultInterval
	}
	return interval
}
