//go:build wireinject
// +build wireinject

package internal

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hoangdg/pulse/internal/config"
	"github.com/hoangdg/pulse/internal/handler"
	"github.com/hoangdg/pulse/internal/repo"
	"github.com/hoangdg/pulse/internal/service"
	"github.com/hoangdg/pulse/internal/telegram"
	"github.com/hoangdg/pulse/pkg/exchange"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const telegramHTTPTimeout = 10 * time.Second

var (
	handlerSet = wire.NewSet(
		handler.NewSignalHandler,
	)

	scanSet = wire.NewSet(
		provideExchange,
		provideNarratorService,
		repo.NewSubscriberRepo,
		service.NewIndicatorService,
		service.NewAnalyzerService,
		service.NewSignalService,
		service.NewSubscriberService,
		service.NewMarketService,
		service.NewMonitorService,
		service.NewScanLoop,
		provideTelegram,
		provideNotifier,
	)
)

// InitializeApp 初始化应用
func InitializeApp(logger *zap.Logger, db *gorm.DB, conf *config.Config) (*AppComponents, error) {
	wire.Build(
		handlerSet,
		scanSet,
		wire.Struct(new(AppComponents), "*"),
	)
	return nil, nil
}

// provideExchange provides the market data source
func provideExchange(conf *config.Config, logger *zap.Logger) exchange.Exchange {
	client := exchange.NewBinanceClient(
		conf.Binance.APIKey,
		conf.Binance.Secret,
		conf.Binance.ProxyURL,
		conf.Binance.Testnet,
	)

	logger.Info("Binance client initialized",
		zap.Bool("testnet", conf.Binance.Testnet),
		zap.Bool("has_credentials", conf.Binance.APIKey != "" && conf.Binance.Secret != ""),
	)
	return client
}

// provideNarratorService provides the signal commentary service
func provideNarratorService(conf *config.Config, logger *zap.Logger) *service.NarratorService {
	if conf.LLM.APIKey == "" {
		logger.Info("LLM API key not configured, signal commentary disabled")
		return service.NewNarratorService(nil, "", logger)
	}

	var options = []option.RequestOption{
		option.WithBaseURL(conf.LLM.BaseURL),
		option.WithAPIKey(conf.LLM.APIKey),
	}
	if conf.LLM.ProxyURL != "" {
		u, err := url.Parse(conf.LLM.ProxyURL)
		if err != nil {
			logger.Fatal("failed to parse proxy URL", zap.Error(err))
		}
		httpClient := &http.Client{
			Timeout: time.Minute,
			Transport: &http.Transport{
				Proxy: http.ProxyURL(u),
			},
		}
		options = append(options, option.WithHTTPClient(httpClient))
	}

	client := openai.NewClient(options...)

	logger.Info("OpenAI client initialized", zap.String("model", conf.LLM.Model))
	return service.NewNarratorService(&client, conf.LLM.Model, logger)
}

// provideTelegram provides telegram instance
func provideTelegram(logger *zap.Logger, conf *config.Config,
	subscriberService *service.SubscriberService,
	signalService *service.SignalService) *telegram.Telegram {
	if !conf.Telegram.Enabled {
		return nil
	}

	httpClient := &http.Client{Timeout: telegramHTTPTimeout}

	tg, err := telegram.NewTelegram(logger, telegram.Settings{
		Token:   conf.Telegram.Token,
		ChatID:  conf.Telegram.ChatID,
		AdminID: conf.Telegram.AdminID,
		Client:  httpClient,
	}, subscriberService, signalService)
	if err != nil {
		logger.Error("failed to init telegram", zap.Error(err))
		return nil
	}

	return tg
}

// provideNotifier provides the notification sink
func provideNotifier(tg *telegram.Telegram) service.Notifier {
	if tg == nil {
		return service.NewNopNotifier()
	}
	return tg
}
