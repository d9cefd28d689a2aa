package exchange

import "context"

// Exchange 行情数据接口，分析引擎只依赖这里列出的能力
// 返回空数据（而非错误）时由调用方按"无数据"处理
type Exchange interface {
	GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*Kline, error)
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
	Get24hTicker(ctx context.Context, symbol string) (*Ticker24h, error)
}
