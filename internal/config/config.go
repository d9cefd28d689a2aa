package config

type Config struct {
	Telegram TelegramConf `json:"telegram"`
	Binance  BinanceConf  `json:"binance"`
	Scan     ScanConf     `json:"scan"`
	Analysis AnalysisConf `json:"analysis"`
	LLM      LlmConf      `json:"llm"`
}

type TelegramConf struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  string `json:"chat_id"`  // 管理员会话ID，接收新用户通知
	AdminID int64  `json:"admin_id"` // 主管理员的Telegram用户ID
}

type BinanceConf struct {
	APIKey   string `json:"api_key"`
	Secret   string `json:"secret"`
	ProxyURL string `json:"proxy_url"` // 代理地址，例如: http://127.0.0.1:7890
	Testnet  bool   `json:"testnet"`   // 是否使用测试网
}

type ScanConf struct {
	Symbols         []string `json:"symbols"`          // 扫描币种，如 ["BTCUSDT", "ETHUSDT"]
	ScanMinutes     []int    `json:"scan_minutes"`     // 每小时的扫描分钟，默认 1,16,31,46
	Concurrency     int      `json:"concurrency"`      // 并发扫描数，默认4
	CooldownMinutes int      `json:"cooldown_minutes"` // 同币种分析冷却（分钟），默认120
	MonitorMinutes  int      `json:"monitor_minutes"`  // 活跃信号检查间隔（分钟），默认5
	SummaryHour     int      `json:"summary_hour"`     // 日报发送小时，默认23
}

type TimeframeConf struct {
	Interval string  `json:"interval"` // K线周期，如 15m/1h/4h
	Weight   float64 `json:"weight"`   // 聚合权重
	Limit    int     `json:"limit"`    // 拉取K线数量
}

type AnalysisConf struct {
	Timeframes       []TimeframeConf `json:"timeframes"`
	PrimaryTimeframe string          `json:"primary_timeframe"` // 支撑/阻力取自该周期，默认1h
	MinConfidence    int             `json:"min_confidence"`    // 最低置信度，默认100
	MinRiskReward    float64         `json:"min_risk_reward"`   // 最低盈亏比，默认1.5
	TrendStrength    float64         `json:"trend_strength"`    // 趋势强度门槛（百分比），默认60
	VolumeSpike      float64         `json:"volume_spike"`      // 放量倍数门槛，默认1.5
	MinVolumeRatio   float64         `json:"min_volume_ratio"`  // 最低量比，默认0.8
	StopLossPercent  float64         `json:"stop_loss_percent"` // 止损百分比，默认0.05
	TakeProfits      []float64       `json:"take_profits"`      // 四级止盈百分比，默认 0.01/0.025/0.045/0.10
	EntrySlippage    float64         `json:"entry_slippage"`    // 入场滑点缓冲，默认0.001
}

type LlmConf struct {
	BaseURL  string `json:"base_url"`  // LLM API基础URL
	APIKey   string `json:"api_key"`   // LLM API密钥，为空时关闭信号点评
	Model    string `json:"model"`     // 模型名称
	ProxyURL string `json:"proxy_url"` // 代理地址，例如: http://127.0.0.1:7890
}

// Normalize 补齐缺省配置
func (c *Config) Normalize() {
	if len(c.Scan.Symbols) == 0 {
		c.Scan.Symbols = []string{
			"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT", "XRPUSDT",
			"ADAUSDT", "DOGEUSDT", "MATICUSDT", "DOTUSDT", "AVAXUSDT",
		}
	}
	if len(c.Scan.ScanMinutes) == 0 {
		c.Scan.ScanMinutes = []int{1, 16, 31, 46}
	}
	if c.Scan.Concurrency <= 0 {
		c.Scan.Concurrency = 4
	}
	if c.Scan.CooldownMinutes <= 0 {
		c.Scan.CooldownMinutes = 120
	}
	if c.Scan.MonitorMinutes <= 0 {
		c.Scan.MonitorMinutes = 5
	}
	if c.Scan.SummaryHour <= 0 {
		c.Scan.SummaryHour = 23
	}

	if len(c.Analysis.Timeframes) == 0 {
		c.Analysis.Timeframes = []TimeframeConf{
			{Interval: "15m", Weight: 1.0, Limit: 100},
			{Interval: "1h", Weight: 1.2, Limit: 100},
			{Interval: "4h", Weight: 1.5, Limit: 100},
		}
	}
	if c.Analysis.PrimaryTimeframe == "" {
		c.Analysis.PrimaryTimeframe = "1h"
	}
	if c.Analysis.MinConfidence <= 0 {
		c.Analysis.MinConfidence = 100
	}
	if c.Analysis.MinRiskReward <= 0 {
		c.Analysis.MinRiskReward = 1.5
	}
	if c.Analysis.TrendStrength <= 0 {
		c.Analysis.TrendStrength = 60
	}
	if c.Analysis.VolumeSpike <= 0 {
		c.Analysis.VolumeSpike = 1.5
	}
	if c.Analysis.MinVolumeRatio <= 0 {
		c.Analysis.MinVolumeRatio = 0.8
	}
	if c.Analysis.StopLossPercent <= 0 {
		c.Analysis.StopLossPercent = 0.05
	}
	if len(c.Analysis.TakeProfits) == 0 {
		c.Analysis.TakeProfits = []float64{0.01, 0.025, 0.045, 0.10}
	}
	if c.Analysis.EntrySlippage <= 0 {
		c.Analysis.EntrySlippage = 0.001
	}
}
