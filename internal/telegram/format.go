package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hoangdg/pulse/internal/models"
	"github.com/valyala/fasttemplate"
)

const signalTemplate = `🚨 *新交易信号 #{{number}}*

币种: {{symbol}}
方向: *{{direction}}*
置信度: {{confidence}}/100
入场价: {{entry}}
止损价: {{stop_loss}}
止盈目标: {{take_profits}}
盈亏比: {{risk_reward}}

⚠️ 仅供参考，不构成投资建议`

const signalClosedTemplate = `{{icon}} *信号 #{{number}} 已平仓*

币种: {{symbol}}
方向: {{direction}}
入场价: {{entry}}
结果: {{outcome}}
盈亏: {{profit}}%`

const broadcastReportTemplate = `📬 群发完成
送达: {{sent}}/{{total}}
失败: {{failed}}`

const dailySummaryTemplate = `📊 *每日信号汇总 ({{date}})*

信号总数: {{total}}
盈利: {{wins}}  亏损: {{losses}}
仍在持仓: {{active}}
胜率: {{win_rate}}%
累计盈亏: {{total_profit}}%
平均盈亏: {{avg_profit}}%`

// formatFloat 去掉无意义的尾部零
func formatFloat(v float64) string {
	str := strconv.FormatFloat(v, 'f', 6, 64)
	str = strings.TrimRight(str, "0")
	str = strings.TrimRight(str, ".")
	if str == "" {
		return "0"
	}
	return str
}

func renderSignal(signal *models.Signal, commentary string) string {
	targets := make([]string, 0, len(signal.TakeProfits))
	for i, tp := range signal.TakeProfits {
		targets = append(targets, fmt.Sprintf("TP%d %s", i+1, formatFloat(tp)))
	}

	tmpl := fasttemplate.New(signalTemplate, "{{", "}}")
	msg := tmpl.ExecuteString(map[string]interface{}{
		"number":       strconv.Itoa(signal.SignalNumber),
		"symbol":       signal.Symbol,
		"direction":    signal.Direction,
		"confidence":   strconv.Itoa(signal.Confidence),
		"entry":        formatFloat(signal.Entry),
		"stop_loss":    formatFloat(signal.StopLoss),
		"take_profits": strings.Join(targets, " / "),
		"risk_reward":  formatFloat(signal.RiskReward),
	})

	if commentary != "" {
		msg += "\n\n💬 " + commentary
	}
	return msg
}

func renderSignalClosed(signal *models.Signal) string {
	icon, outcome := "🛑", "触发止损"
	if signal.Status == models.SignalStatusCompleted {
		icon, outcome = "✅", "止盈离场"
	}

	tmpl := fasttemplate.New(signalClosedTemplate, "{{", "}}")
	return tmpl.ExecuteString(map[string]interface{}{
		"icon":      icon,
		"number":    strconv.Itoa(signal.SignalNumber),
		"symbol":    signal.Symbol,
		"direction": signal.Direction,
		"entry":     formatFloat(signal.Entry),
		"outcome":   outcome,
		"profit":    formatFloat(signal.ProfitPercent),
	})
}

func renderBroadcastReport(sent, total int) string {
	tmpl := fasttemplate.New(broadcastReportTemplate, "{{", "}}")
	return tmpl.ExecuteString(map[string]interface{}{
		"sent":   strconv.Itoa(sent),
		"total":  strconv.Itoa(total),
		"failed": strconv.Itoa(total - sent),
	})
}

func renderDailySummary(stats *models.DailyStats) string {
	tmpl := fasttemplate.New(dailySummaryTemplate, "{{", "}}")
	return tmpl.ExecuteString(map[string]interface{}{
		"date":         stats.Date,
		"total":        strconv.Itoa(stats.TotalSignals),
		"wins":         strconv.Itoa(stats.Wins),
		"losses":       strconv.Itoa(stats.Losses),
		"active":       strconv.Itoa(stats.ActiveSignals),
		"win_rate":     formatFloat(stats.WinRate),
		"total_profit": formatFloat(stats.TotalProfit),
		"avg_profit":   formatFloat(stats.AvgProfit),
	})
}
