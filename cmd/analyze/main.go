package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hoangdg/pulse/internal/config"
	"github.com/hoangdg/pulse/internal/service"
	"github.com/hoangdg/pulse/pkg/exchange"
	"go.uber.org/zap"
)

// 单次分析工具，不依赖数据库和Telegram
// 用法: analyze BTCUSDT [ETHUSDT ...]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: analyze <symbol> [symbol...]")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	var conf config.Config
	conf.Normalize()

	client := exchange.NewBinanceClient("", "", os.Getenv("BINANCE_PROXY_URL"), false)
	indicatorService := service.NewIndicatorService(&conf)
	analyzer := service.NewAnalyzerService(&conf, client, indicatorService, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, symbol := range os.Args[1:] {
		result := analyzer.Analyze(ctx, strings.ToUpper(symbol))
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(data))
	}
}
