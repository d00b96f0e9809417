package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"deployScope/internal/chain"
	"deployScope/internal/model"
	"deployScope/internal/subs"
)

// update is the slice of the getUpdates payload the command layer needs. The
// library's typed Update predates forum topics, so message_thread_id is read
// from the raw payload.
type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text            string `json:"text"`
		MessageThreadID int64  `json:"message_thread_id"`
		Chat            struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// CommandHandler translates chat commands into registry operations. It is
// thin glue: all filtering semantics live in the registry and the engine.
type CommandHandler struct {
	telegram *Telegram
	registry *subs.Registry
	logger   *zap.Logger
}

func NewCommandHandler(telegram *Telegram, registry *subs.Registry, logger *zap.Logger) *CommandHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandHandler{telegram: telegram, registry: registry, logger: logger}
}

// Run long-polls for commands until the context ends.
func (h *CommandHandler) Run(ctx context.Context) error {
	var offset int64

	for ctx.Err() == nil {
		updates, err := h.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			h.logger.Warn("get updates failed", zap.Error(err))
			timer := time.NewTimer(3 * time.Second)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			h.handle(ctx, u)
		}
	}

	return nil
}

func (h *CommandHandler) getUpdates(ctx context.Context, offset int64) ([]update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := make(tgbotapi.Params)
	params.AddNonZero64("offset", offset)
	params.AddNonZero("timeout", 10)

	resp, err := h.telegram.bot.MakeRequest("getUpdates", params)
	if err != nil {
		return nil, err
	}

	var updates []update
	if err := json.Unmarshal(resp.Result, &updates); err != nil {
		return nil, fmt.Errorf("parse updates: %w", err)
	}
	return updates, nil
}

func (h *CommandHandler) handle(ctx context.Context, u update) {
	scope := model.Scope{ChatID: u.Message.Chat.ID, ThreadID: u.Message.MessageThreadID}
	fields := strings.Fields(u.Message.Text)
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}

	var reply string
	switch command {
	case "/start":
		reply = h.addFilter(scope, fields[1:])
	case "/stop":
		reply = h.removeFilter(scope, fields[1:])
	case "/list":
		reply = h.listFilters(scope)
	default:
		return
	}

	if err := h.telegram.Send(ctx, scope, reply, false); err != nil {
		h.logger.Warn("command reply failed", zap.Int64("chat", scope.ChatID), zap.Error(err))
	}
}

func (h *CommandHandler) addFilter(scope model.Scope, args []string) string {
	sub, err := ParseFilter(args)
	if err != nil {
		return "⚠️ " + err.Error() + "\nUsage: /start <TICKER|ALL|threshold> [eth|bsc|base]"
	}

	size := h.registry.Add(scope, sub)
	return fmt.Sprintf("✅ Alerts activated for %s (%d active)", describeFilter(sub), size)
}

func (h *CommandHandler) removeFilter(scope model.Scope, args []string) string {
	sub, err := ParseFilter(args)
	if err != nil {
		return "⚠️ " + err.Error()
	}

	if !h.registry.Remove(scope, sub) {
		return fmt.Sprintf("⚠️ No filter for %s found.", describeFilter(sub))
	}
	return fmt.Sprintf("🛑 Unsubscribed from %s", describeFilter(sub))
}

func (h *CommandHandler) listFilters(scope model.Scope) string {
	filters := h.registry.List(scope)
	if len(filters) == 0 {
		return "🚫 No active filters."
	}

	lines := make([]string, 0, len(filters)+1)
	lines = append(lines, "🎯 Active filters:")
	for _, sub := range filters {
		lines = append(lines, "• "+describeFilter(sub))
	}
	return strings.Join(lines, "\n")
}

// ParseFilter turns command arguments into a subscription. A numeric first
// argument makes a threshold filter, anything else a ticker filter; the
// literal ALL is the wildcard, stored as a zero-threshold filter with no
// ticker. The optional second argument selects the chain, defaulting to eth.
func ParseFilter(args []string) (model.Subscription, error) {
	if len(args) == 0 {
		return model.Subscription{}, fmt.Errorf("missing filter argument")
	}

	sub := model.Subscription{Chain: "eth"}
	if len(args) > 1 {
		name := strings.ToLower(strings.TrimSpace(args[1]))
		if _, ok := chain.LookupScope(name); !ok {
			return model.Subscription{}, fmt.Errorf("unsupported chain %q", args[1])
		}
		sub.Chain = name
	}

	if threshold, err := strconv.ParseFloat(args[0], 64); err == nil {
		if threshold < 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
			return model.Subscription{}, fmt.Errorf("threshold must be a finite number >= 0")
		}
		sub.Threshold = threshold
		return sub, nil
	}

	ticker := model.NormalizeTicker(args[0])
	if ticker == "ALL" {
		return sub, nil
	}
	sub.Ticker = ticker
	return sub, nil
}

func describeFilter(sub model.Subscription) string {
	scope, _ := chain.LookupScope(sub.Chain)
	if sub.Ticker != "" {
		return fmt.Sprintf("*%s* on %s", sub.Ticker, sub.Chain)
	}
	if sub.Threshold == 0 {
		return fmt.Sprintf("*ALL* tokens on %s", sub.Chain)
	}
	return fmt.Sprintf("liquidity ≥ %g %s on %s", sub.Threshold, scope.NativeSymbol, sub.Chain)
}
