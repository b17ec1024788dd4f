package bot

import (
	"regexp"
	"strings"
)

// CommandKind tags the parse result of an inbound message.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandQuote
	CommandIndex
	CommandHelp
)

func (k CommandKind) String() string {
	switch k {
	case CommandQuote:
		return "quote"
	case CommandIndex:
		return "index"
	case CommandHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Command is the tagged result of parsing one message. Symbol is set only
// for CommandQuote.
type Command struct {
	Kind   CommandKind
	Symbol string
}

// Parser classifies raw chat text into commands. Matching is
// case-insensitive; the quote marker and keywords are configurable.
type Parser struct {
	indexKeyword string
	helpKeyword  string
	tickerRe     *regexp.Regexp
}

// NewParser builds a parser. Empty arguments fall back to the default
// command surface: "$" marker, "!ihsg", "!help".
func NewParser(quoteMarker, indexKeyword, helpKeyword string) *Parser {
	if quoteMarker == "" {
		quoteMarker = "$"
	}
	if indexKeyword == "" {
		indexKeyword = "!ihsg"
	}
	if helpKeyword == "" {
		helpKeyword = "!help"
	}
	return &Parser{
		indexKeyword: strings.ToLower(indexKeyword),
		helpKeyword:  strings.ToLower(helpKeyword),
		tickerRe:     regexp.MustCompile(`^` + regexp.QuoteMeta(quoteMarker) + `([a-z0-9.]+)`),
	}
}

// Parse classifies text. Tickers are normalized to uppercase and a trailing
// ".JK" exchange suffix is stripped.
func (p *Parser) Parse(text string) Command {
	lower := strings.ToLower(strings.TrimSpace(text))

	if strings.HasPrefix(lower, p.helpKeyword) {
		return Command{Kind: CommandHelp}
	}
	if matchesKeyword(lower, p.indexKeyword) {
		return Command{Kind: CommandIndex}
	}
	if m := p.tickerRe.FindStringSubmatch(lower); m != nil {
		symbol := strings.ToUpper(m[1])
		symbol = strings.TrimSuffix(symbol, ".JK")
		return Command{Kind: CommandQuote, Symbol: symbol}
	}

	return Command{}
}

// matchesKeyword reports whether text starts with keyword at a word
// boundary ("!ihsg", "!ihsg hari ini", but not "!ihsgx").
func matchesKeyword(text, keyword string) bool {
	if !strings.HasPrefix(text, keyword) {
		return false
	}
	rest := text[len(keyword):]
	if rest == "" {
		return true
	}
	c := rest[0]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9')
}
