package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/domain"
	"go.uber.org/zap"
)

// Outcome is the result of one dispatch attempt
type Outcome int

const (
	Delivered Outcome = iota
	NotConfigured
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case NotConfigured:
		return "not_configured"
	default:
		return "failed"
	}
}

// SettingsSource is satisfied by the settings DocumentStore
type SettingsSource interface {
	Load() domain.Settings
}

// Dispatcher forwards orders to a Telegram chat through the Bot API
// sendMessage method. Every order gets exactly one attempt.
type Dispatcher struct {
	settings SettingsSource
	apiBase  string
	currency string
	client   *http.Client
}

func NewDispatcher(settings SettingsSource, cfg config.TelegramConfig) *Dispatcher {
	apiBase := strings.TrimRight(cfg.ApiBase, "/")
	if apiBase == "" {
		apiBase = config.DefaultAppConfig.Telegram.ApiBase
	}
	return &Dispatcher{
		settings: settings,
		apiBase:  apiBase,
		currency: cfg.Currency,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Dispatch reads the current settings and posts the order notification.
// NotConfigured comes with domain.ErrConfigurationMissing and no network
// call. Failed comes with domain.ErrDeliveryFailed and means the request
// never got a reply. Any HTTP reply, whatever its status, is Delivered.
func (d *Dispatcher) Dispatch(ctx context.Context, order domain.Order) (Outcome, error) {
	settings := d.settings.Load()
	if !settings.Configured() {
		return NotConfigured, errors.WithStack(domain.ErrConfigurationMissing)
	}

	var (
		code int
		body string
	)
	url := d.apiBase + "/bot" + settings.BotToken + "/sendMessage"
	err := gout.New(d.client).
		POST(url).
		WithContext(ctx).
		SetJSON(sendMessageRequest{
			ChatID:    settings.ChatID,
			Text:      d.FormatMessage(order),
			ParseMode: "Markdown",
		}).
		Code(&code).
		BindBody(&body).
		Do()
	if err != nil {
		// the url carries the bot token, keep it out of logs and responses
		err = errors.Wrap(domain.ErrDeliveryFailed, redact(err.Error(), settings.BotToken))
		zap.L().Error("telegram sendMessage failed", zap.String("namespace", "telegram"), zap.Error(err))
		return Failed, err
	}
	if code < 200 || code > 299 {
		// the request reached telegram, a rejection is reported but the order
		// counts as sent
		zap.L().Warn("telegram sendMessage rejected",
			zap.String("namespace", "telegram"),
			zap.Int("status", code),
			zap.String("body", body))
		return Delivered, nil
	}

	zap.L().Info("order dispatched",
		zap.String("namespace", "telegram"),
		zap.String("product", order.Product.Name),
		zap.String("chat_id", settings.ChatID))
	return Delivered, nil
}

// FormatMessage renders the order notification in Telegram Markdown
func (d *Dispatcher) FormatMessage(order domain.Order) string {
	return fmt.Sprintf("🛒 Новый заказ:\n📦 Товар: %s\n💰 Цена: %s%s\n🙍‍♂️ Имя: %s\n📞 Телефон: %s",
		EscapeMarkdown(order.Product.Name),
		order.Product.Price.String(),
		d.currency,
		EscapeMarkdown(order.Name),
		EscapeMarkdown(order.Phone),
	)
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// EscapeMarkdown escapes the characters that legacy Markdown parse mode treats as entities
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "<token>")
}
