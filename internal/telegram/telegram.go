package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hoangdg/pulse/internal/models"
	"github.com/hoangdg/pulse/internal/service"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"
)

type Settings struct {
	Token   string
	ChatID  string // 新用户通知会话，为空时退回管理员私聊
	AdminID int64
	Client  *http.Client
}

func (s Settings) noticeChat() string {
	if s.ChatID != "" {
		return s.ChatID
	}
	if s.AdminID != 0 {
		return cast.ToString(s.AdminID)
	}
	return ""
}

type Telegram struct {
	logger   *zap.Logger
	settings Settings
	client   *tele.Bot

	subscriberService *service.SubscriberService
	signalService     *service.SignalService
}

var _ service.Notifier = (*Telegram)(nil)

func NewTelegram(logger *zap.Logger, settings Settings,
	subscriberService *service.SubscriberService,
	signalService *service.SignalService) (*Telegram, error) {

	poller := &tele.LongPoller{Timeout: 10 * time.Second}

	userMiddleware := tele.NewMiddlewarePoller(poller, func(u *tele.Update) bool {

		return true
	})

	client, err := tele.NewBot(tele.Settings{
		ParseMode: tele.ModeMarkdown,
		Token:     settings.Token,
		Poller:    userMiddleware,
		Client:    settings.Client,
	})
	if err != nil {
		return nil, err
	}

	client.Use(middleware.AutoRespond())

	err = client.SetCommands([]tele.Command{
		{Text: "/start", Description: "订阅交易信号"},
		{Text: "/stats", Description: "查看今日信号统计"},
		{Text: "/active", Description: "查看持仓中的信号"},
		{Text: "/help", Description: "获取帮助信息"},
	})
	if err != nil {
		return nil, err
	}

	bot := &Telegram{
		logger:            logger,
		settings:          settings,
		client:            client,
		subscriberService: subscriberService,
		signalService:     signalService,
	}
	bot.registerHandlers()

	return bot, nil
}

func (r *Telegram) Start() {
	go r.client.Start()
}

func (r *Telegram) Stop() {
	r.client.Stop()
}

func (r *Telegram) registerHandlers() {
	r.client.Handle("/start", r.handleStart)
	r.client.Handle("/stats", r.handleStats)
	r.client.Handle("/active", r.handleActive)
	r.client.Handle("/help", r.handleHelp)
	r.client.Handle("/block", r.requireAdmin(r.handleBlock))
	r.client.Handle("/unblock", r.requireAdmin(r.handleUnblock))
	r.client.Handle("/broadcast", r.requireAdmin(r.handleBroadcast))
}

func (r *Telegram) handleStart(c tele.Context) error {
	sender := c.Sender()
	created, err := r.subscriberService.Register(context.Background(),
		sender.ID, sender.Username, sender.FirstName)
	if err != nil {
		r.logger.Error("failed to register subscriber", zap.Error(err))
		return c.Send("注册失败，请稍后重试")
	}

	if chat := r.settings.noticeChat(); created && chat != "" {
		msg := fmt.Sprintf("👤 新订阅用户: %s (@%s) ID: %d",
			sender.FirstName, sender.Username, sender.ID)
		if err := r.Notify(chat, msg); err != nil {
			r.logger.Warn("failed to notify admin", zap.Error(err))
		}
	}

	return c.Send("✅ 订阅成功！\n\n扫描到高置信度信号后会第一时间推送给你。\n输入 /help 查看全部命令。")
}

func (r *Telegram) handleStats(c tele.Context) error {
	stats, err := r.signalService.GetDailyStats(context.Background(), time.Now())
	if err != nil {
		r.logger.Error("failed to get daily stats", zap.Error(err))
		return c.Send("统计查询失败，请稍后重试")
	}
	return c.Send(renderDailySummary(stats))
}

func (r *Telegram) handleActive(c tele.Context) error {
	signals, err := r.signalService.GetActiveSignals(context.Background())
	if err != nil {
		r.logger.Error("failed to get active signals", zap.Error(err))
		return c.Send("查询失败，请稍后重试")
	}
	if len(signals) == 0 {
		return c.Send("当前没有持仓中的信号")
	}

	msg := "📈 *持仓中的信号*\n"
	for _, signal := range signals {
		msg += fmt.Sprintf("\n#%d %s %s 入场 %s 置信度 %d",
			signal.SignalNumber, signal.Symbol, signal.Direction,
			formatFloat(signal.Entry), signal.Confidence)
	}
	return c.Send(msg)
}

func (r *Telegram) handleHelp(c tele.Context) error {
	return c.Send("可用命令:\n" +
		"/start - 订阅交易信号\n" +
		"/stats - 查看今日信号统计\n" +
		"/active - 查看持仓中的信号\n" +
		"/help - 获取帮助信息")
}

func (r *Telegram) handleBlock(c tele.Context) error {
	return r.setBlocked(c, true)
}

func (r *Telegram) handleUnblock(c tele.Context) error {
	return r.setBlocked(c, false)
}

func (r *Telegram) setBlocked(c tele.Context, blocked bool) error {
	id := cast.ToInt64(c.Message().Payload)
	if id == 0 {
		return c.Send("用法: /block <用户ID> 或 /unblock <用户ID>")
	}
	if err := r.subscriberService.SetBlocked(context.Background(), id, blocked); err != nil {
		r.logger.Error("failed to update block state", zap.Error(err))
		return c.Send("操作失败，请稍后重试")
	}
	if blocked {
		return c.Send(fmt.Sprintf("已封禁用户 %d", id))
	}
	return c.Send(fmt.Sprintf("已解封用户 %d", id))
}

// handleBroadcast 管理员群发公告，发送完成后回执送达情况
func (r *Telegram) handleBroadcast(c tele.Context) error {
	msg := c.Message().Payload
	if msg == "" {
		return c.Send("用法: /broadcast <要群发的内容>")
	}

	sent, total := r.Broadcast("📢 " + msg)
	return c.Send(renderBroadcastReport(sent, total))
}

// requireAdmin 管理员命令守卫
func (r *Telegram) requireAdmin(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if !r.subscriberService.IsAdmin(context.Background(), c.Sender().ID) {
			return c.Send("该命令仅限管理员使用")
		}
		return next(c)
	}
}

func (r *Telegram) Notify(chatId, msg string) error {
	_chatId := cast.ToInt(chatId)
	_, err := r.client.Send(tele.ChatID(_chatId), msg, &tele.SendOptions{ParseMode: tele.ModeMarkdown})
	return err
}

// Broadcast 向所有未封禁的订阅用户群发消息，返回送达数与目标总数
// 对方拉黑机器人时自动标记封禁，避免反复无效推送
func (r *Telegram) Broadcast(msg string) (sent, total int) {
	subscribers, err := r.subscriberService.ActiveSubscribers(context.Background())
	if err != nil {
		r.logger.Error("failed to load subscribers for broadcast", zap.Error(err))
		return 0, 0
	}

	total = len(subscribers)
	for _, subscriber := range subscribers {
		_, err := r.client.Send(tele.ChatID(subscriber.ID), msg,
			&tele.SendOptions{ParseMode: tele.ModeMarkdown})
		if err == nil {
			sent++
			continue
		}
		if errors.Is(err, tele.ErrBlockedByUser) || errors.Is(err, tele.ErrUserIsDeactivated) {
			if err := r.subscriberService.SetBlocked(context.Background(), subscriber.ID, true); err != nil {
				r.logger.Warn("failed to mark subscriber blocked", zap.Error(err))
			}
			continue
		}
		r.logger.Warn("failed to send message",
			zap.Int64("chat_id", subscriber.ID), zap.Error(err))
	}
	return sent, total
}

func (r *Telegram) NotifySignal(signal *models.Signal, commentary string) {
	r.Broadcast(renderSignal(signal, commentary))
}

func (r *Telegram) NotifySignalClosed(signal *models.Signal) {
	r.Broadcast(renderSignalClosed(signal))
}

func (r *Telegram) NotifyDailySummary(stats *models.DailyStats) {
	r.Broadcast(renderDailySummary(stats))
}
