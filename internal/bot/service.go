package bot

import (
	"context"
	"fmt"
	"math"

	"saham-bot/internal/datasource"
	"saham-bot/internal/logger"
	"saham-bot/internal/store"
	"saham-bot/internal/types"
)

// Sender delivers a reply through the messaging gateway.
type Sender interface {
	SendText(ctx context.Context, chatID, text string) error
}

// QuoteProvider answers quote and index requests.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (*types.QuoteResult, error)
	Index(ctx context.Context) (*types.QuoteResult, error)
}

// Outcome is the terminal state of handling one inbound message. The webhook
// handler echoes it back to the gateway as the acknowledgment status.
type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeIgnored     Outcome = "ignored"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeError       Outcome = "error"
)

// Service dispatches parsed commands: rate limit, fetch, format, send.
type Service struct {
	parser        *Parser
	limiter       *SenderLimiter
	formatter     *Formatter
	quotes        QuoteProvider
	sender        Sender
	indexDisplay  string
	helpOnUnknown bool
}

// NewService wires the dispatch pipeline from configuration.
func NewService(cfg *store.Config, quotes QuoteProvider, sender Sender) *Service {
	return &Service{
		parser:        NewParser(cfg.Commands.QuoteMarker, cfg.Commands.IndexKeyword, cfg.Commands.HelpKeyword),
		limiter:       NewSenderLimiter(cfg.RateWindow(), cfg.RateLimit.MaxRequests),
		formatter:     NewFormatter(cfg.Reply.Signature, cfg.Commands.QuoteMarker, cfg.Commands.IndexKeyword, cfg.Commands.HelpKeyword),
		quotes:        quotes,
		sender:        sender,
		indexDisplay:  fmt.Sprintf("IHSG (%s)", cfg.TradingView.Exchange),
		helpOnUnknown: cfg.Reply.OnUnrecognized == "help",
	}
}

// HandleMessage runs one inbound message through the pipeline. All failures
// are handled here; nothing propagates across requests.
func (s *Service) HandleMessage(ctx context.Context, msg types.InboundMessage) Outcome {
	if msg.Text == "" || msg.ChatID == "" || msg.FromMe {
		return OutcomeIgnored
	}

	cmd := s.parser.Parse(msg.Text)
	if cmd.Kind == CommandUnknown {
		if !s.helpOnUnknown {
			return OutcomeIgnored
		}
		s.send(ctx, msg.ChatID, s.formatter.HelpText())
		return OutcomeOK
	}

	ok, retry := s.limiter.Allow(msg.ChatID)
	if !ok {
		seconds := int(math.Ceil(retry.Seconds()))
		s.send(ctx, msg.ChatID, fmt.Sprintf("Mohon tunggu %d detik sebelum request lagi.", seconds))
		return OutcomeRateLimited
	}

	logger.Command(ctx, msg.ChatID, cmd.Kind.String(), cmd.Symbol)

	switch cmd.Kind {
	case CommandHelp:
		s.send(ctx, msg.ChatID, s.formatter.HelpText())
		return OutcomeOK

	case CommandIndex:
		res, err := s.quotes.Index(ctx)
		if err != nil {
			logger.ErrorWithErr(ctx, "Index fetch failed", err, "chat_id", msg.ChatID)
			s.send(ctx, msg.ChatID, fetchFailureText(err))
			return OutcomeError
		}
		s.send(ctx, msg.ChatID, s.formatter.FormatQuote(res, s.indexDisplay))
		return OutcomeOK

	case CommandQuote:
		res, err := s.quotes.Quote(ctx, cmd.Symbol)
		if err != nil {
			logger.ErrorWithErr(ctx, "Quote fetch failed", err, "chat_id", msg.ChatID, "symbol", cmd.Symbol)
			s.send(ctx, msg.ChatID, fetchFailureText(err))
			return OutcomeError
		}
		s.send(ctx, msg.ChatID, s.formatter.FormatQuote(res, ""))
		return OutcomeOK
	}

	return OutcomeIgnored
}

// send delivers a reply. A failed send is logged and dropped; there is no
// retry or queue.
func (s *Service) send(ctx context.Context, chatID, text string) {
	if err := s.sender.SendText(ctx, chatID, text); err != nil {
		logger.ErrorWithErr(ctx, "Failed to send reply", err, "chat_id", chatID)
	}
}

// fetchFailureText maps a fetch failure onto the user-facing message.
func fetchFailureText(err error) string {
	reason, ok := datasource.ReasonOf(err)
	if !ok {
		return "Gagal mengambil data. Coba lagi nanti."
	}
	switch reason {
	case datasource.ReasonSymbolNotFound:
		return "Data tidak tersedia untuk simbol tersebut."
	case datasource.ReasonAuthFailure:
		return "Gagal login ke TradingView. Periksa kredensial."
	default:
		return "Gagal mengambil data. Coba lagi nanti."
	}
}
