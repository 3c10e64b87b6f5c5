package di

import (
	"context"
	"fmt"
	"time"

	"SignalPulse/internal/batch"
	"SignalPulse/internal/classifier"
	"SignalPulse/internal/domain/repository"
	"SignalPulse/internal/handler/api"
	"SignalPulse/internal/provider"
	internalrepo "SignalPulse/internal/repository"
	"SignalPulse/internal/service/feargreed"
	"SignalPulse/internal/usecase"
	"SignalPulse/pkg/cache"
	pkgch "SignalPulse/pkg/clickhouse"
	"SignalPulse/pkg/config"
	xhttp "SignalPulse/pkg/http"
	pkgkafka "SignalPulse/pkg/kafka"
	applogger "SignalPulse/pkg/logger"
	"SignalPulse/pkg/metrics"
	"SignalPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the cache backend: Redis when enabled, process
// memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// signal history store is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideSignalStore creates the ClickHouse signal store, or nil when
// persistence is disabled.
func ProvideSignalStore(chClient *pkgch.Client, cfg *config.Config) repository.SignalStore {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseSignalStore(chClient.DB(), cfg.ClickHouse.Database+".signals")
}

// ProvideKafkaProducer creates a Kafka producer, or nil when alert
// delivery is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher creates the Kafka signal publisher, or nil
// when the producer is disabled.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic)
}

// ProvideCandleProvider creates the Binance candle provider.
func ProvideCandleProvider(cfg *config.Config, cacheSvc cache.Service, m repository.Metrics, log *applogger.Logger) repository.CandleProvider {
	return provider.NewBinance(provider.Config{
		BaseURL:    cfg.Binance.BaseURL,
		Timeout:    cfg.Binance.Timeout,
		CacheTTL:   cfg.Binance.CacheTTL,
		StaleTTL:   cfg.Binance.StaleTTL,
		RatePerMin: cfg.Binance.RatePerMin,
	}, cacheSvc, m, log)
}

// ProvideMoodProvider creates the Fear & Greed index client.
func ProvideMoodProvider(cfg *config.Config, cacheSvc cache.Service, log *applogger.Logger) repository.MoodProvider {
	return feargreed.New(cfg.FearGreed.URL, cfg.FearGreed.Timeout, cfg.FearGreed.CacheTTL, cacheSvc, log)
}

// ProvideClassifier creates the signal classifier.
func ProvideClassifier() *classifier.Classifier {
	return classifier.New()
}

// ProvideProcessor creates the batch processor.
func ProvideProcessor(
	candles repository.CandleProvider,
	mood repository.MoodProvider,
	cls *classifier.Classifier,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *batch.Processor {
	return batch.New(candles, mood, cls, m, log, batch.Config{
		MinConfidence: cfg.Scan.MinConfidence,
		CandleLimit:   cfg.Binance.CandleLimit,
		Critical: batch.CriticalThresholds{
			BuyConfidence:  cfg.Scan.Critical.BuyConfidence,
			BuyRawScore:    cfg.Scan.Critical.BuyRawScore,
			SellConfidence: cfg.Scan.Critical.SellConfidence,
			SellRawScore:   cfg.Scan.Critical.SellRawScore,
		},
	})
}

// ProvideScanUseCase creates the scan use case.
func ProvideScanUseCase(
	proc *batch.Processor,
	store repository.SignalStore,
	publisher repository.SignalPublisher,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.ScanUseCase {
	return usecase.NewScanUseCase(proc, store, publisher, log,
		cfg.Binance.Symbols, repository.NormalizeInterval(cfg.Binance.Interval))
}

// ProvideKlineStream creates the WebSocket kline stream, or nil when
// streaming is disabled.
func ProvideKlineStream(cfg *config.Config, cacheSvc cache.Service, log *applogger.Logger) *provider.KlineStream {
	if !cfg.Binance.Stream {
		return nil
	}
	return provider.NewKlineStream(
		cfg.Binance.WebSocketURL,
		cfg.Binance.Symbols,
		repository.NormalizeInterval(cfg.Binance.Interval),
		cacheSvc,
		cfg.Binance.CacheTTL,
		cfg.Binance.StaleTTL,
		log,
	)
}

// ProvideHandler creates the API handler.
func ProvideHandler(log *applogger.Logger, scan *usecase.ScanUseCase) xhttp.Handler {
	return api.NewSignalsHandler(log, scan)
}

// ProvideApp creates the application server. With Kafka enabled the
// logger's aggregated error sink publishes to a sibling topic.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	scan *usecase.ScanUseCase,
	handler xhttp.Handler,
	stream *provider.KlineStream,
	store repository.SignalStore,
	publisher repository.SignalPublisher,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
) *server.App {
	if producer != nil {
		log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.Topic + ".errors",
			Publisher:      internalrepo.NewLogPublisher(producer),
		})
	}
	return server.New(cfg, log, scan, handler, stream, store, publisher, chClient)
}
