package internal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-orz/orz"
	"github.com/go-playground/validator/v10"
	"github.com/hoangdg/pulse/internal/config"
	"github.com/hoangdg/pulse/internal/handler"
	"github.com/hoangdg/pulse/internal/models"
	"github.com/hoangdg/pulse/internal/service"
	"github.com/hoangdg/pulse/internal/telegram"
	"github.com/hoangdg/pulse/pkg/nostd"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func Run(configPath string) error {
	app := NewPulseApp()

	framework, err := orz.NewFramework(
		orz.WithConfig(configPath),
		orz.WithLoggerFromConfig(),
		orz.WithDatabase(),
		orz.WithHTTP(),
		orz.WithApplication(app),
	)
	if err != nil {
		return err
	}

	return framework.Run()
}

func NewPulseApp() orz.Application {
	return &PulseApp{}
}

var _ orz.Application = (*PulseApp)(nil)

type AppComponents struct {
	SignalHandler *handler.SignalHandler

	ScanLoop          *service.ScanLoop
	SignalService     *service.SignalService
	SubscriberService *service.SubscriberService
	MarketService     *service.MarketService
	MonitorService    *service.MonitorService

	Telegram *telegram.Telegram
}

type PulseApp struct {
	components *AppComponents
	conf       *config.Config
}

// GetComponents 获取应用组件
func (r *PulseApp) GetComponents() *AppComponents {
	return r.components
}

func (r *PulseApp) Configure(app *orz.App) error {
	logger := app.Logger()
	e := app.GetEcho()
	db := app.GetDatabase()

	var conf config.Config
	err := app.GetConfig().App.Unmarshal(&conf)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %v", err)
	}
	conf.Normalize()

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	if err := db.AutoMigrate(
		models.Signal{}, models.AnalyzedSymbol{}, models.Subscriber{},
	); err != nil {
		logger.Fatal("database auto migrate failed", zap.Error(err))
	}

	if err := r.Init(logger); err != nil {
		logger.Fatal("app init failed", zap.Error(err))
	}

	e.HidePort = true
	e.HideBanner = true

	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      middleware.DefaultSkipper,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			sugar := logger.Sugar()
			sugar.Error(fmt.Sprintf("[PANIC RECOVER] %v %s\n", err, stack))
			return err
		},
	}))
	e.Use(WithErrorHandler(logger))
	customValidator := nostd.CustomValidator{Validator: validator.New()}
	if err := customValidator.TransInit(); err != nil {
		logger.Sugar().Fatal("failed to init custom validator", zap.Error(err))
	}
	e.Validator = &customValidator

	api := e.Group("/api")
	{
		if r.components.SignalHandler != nil {
			r.components.SignalHandler.RegisterRoutes(api)
		}
	}

	return nil
}

func (r *PulseApp) Init(logger *zap.Logger) error {
	logger.Info("=================================================")
	logger.Info("Pulse Signal Scanner Starting...")
	logger.Info("=================================================")

	components := r.GetComponents()
	if components == nil {
		return fmt.Errorf("components not initialized")
	}

	if components.ScanLoop == nil {
		return fmt.Errorf("scan loop not available, please check Binance configuration")
	}

	if components.Telegram != nil {
		components.Telegram.Start()
		logger.Info("Telegram bot started")
	} else {
		logger.Info("Telegram disabled, signals will only be persisted")
	}

	go func() {
		if err := components.ScanLoop.Start(context.Background()); err != nil {
			logger.Error("scan loop error", zap.Error(err))
		}
	}()
	return nil
}
