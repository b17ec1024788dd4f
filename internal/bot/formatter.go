package bot

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"saham-bot/internal/types"
)

var printer = message.NewPrinter(language.English)

// Formatter renders quote results and static texts into the reply layout
// shown to end users.
type Formatter struct {
	signature    string
	quoteMarker  string
	indexKeyword string
	helpKeyword  string
}

// NewFormatter creates a formatter with the given signature line and
// command surface (used in the help text).
func NewFormatter(signature, quoteMarker, indexKeyword, helpKeyword string) *Formatter {
	if quoteMarker == "" {
		quoteMarker = "$"
	}
	if indexKeyword == "" {
		indexKeyword = "!ihsg"
	}
	if helpKeyword == "" {
		helpKeyword = "!help"
	}
	return &Formatter{
		signature:    signature,
		quoteMarker:  quoteMarker,
		indexKeyword: indexKeyword,
		helpKeyword:  helpKeyword,
	}
}

// FormatNumber renders a price or volume with thousands separators.
// Integral values drop the decimals; NaN renders as "-".
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	if v == math.Trunc(v) {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.2f", v)
}

// formatChange renders the absolute and percent change with an explicit
// plus sign on non-negative values.
func formatChange(change, pct float64) string {
	if math.IsNaN(change) || math.IsNaN(pct) {
		return "-"
	}
	sign := ""
	if change >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%s (%s%.2f%%)", sign, FormatNumber(change), sign, pct)
}

// FormatQuote renders a quote result. display overrides the default
// "SYMBOL (EXCHANGE)" header when non-empty (used for the index reply).
func (f *Formatter) FormatQuote(res *types.QuoteResult, display string) string {
	change, pct := math.NaN(), math.NaN()
	if !math.IsNaN(res.Close) && !math.IsNaN(res.Open) {
		change = res.Close - res.Open
		if res.Open != 0 {
			pct = change / res.Open * 100
		}
	}

	header := display
	if header == "" {
		header = fmt.Sprintf("%s (%s)", res.Symbol, res.Exchange)
	}

	lines := []string{
		header,
		"Close: " + FormatNumber(res.Close),
		"Change: " + formatChange(change, pct),
		fmt.Sprintf("O/H/L: %s / %s / %s", FormatNumber(res.Open), FormatNumber(res.High), FormatNumber(res.Low)),
		"Volume: " + FormatNumber(res.Vol),
	}
	if res.Timestamp != "" {
		lines = append(lines, "Time: "+res.Timestamp)
	}

	if res.Levels != nil {
		sr := res.Levels
		barTime := sr.BarTime
		if barTime == "" {
			barTime = "-"
		}
		lines = append(lines,
			"",
			fmt.Sprintf("📊 SUPPORT & RESISTANCE — %s (1 Day)", res.Symbol),
			"",
			"🔻 Support",
			"S1: "+FormatNumber(sr.S1),
			"S2: "+FormatNumber(sr.S2),
			"S3: "+FormatNumber(sr.S3),
			"",
			"🔺 Resistance",
			"R1: "+FormatNumber(sr.R1),
			"R2: "+FormatNumber(sr.R2),
			"R3: "+FormatNumber(sr.R3),
			"",
			"⏱ "+barTime,
			f.signature,
		)
	}

	return strings.Join(lines, "\n")
}

// HelpText lists the supported commands.
func (f *Formatter) HelpText() string {
	return strings.Join([]string{
		"Panduan cepat:",
		fmt.Sprintf("1) Kirim kode saham dengan format: %sKODE (contoh: %sBBCA)", f.quoteMarker, f.quoteMarker),
		fmt.Sprintf("2) Lihat IHSG: %s", f.indexKeyword),
		fmt.Sprintf("3) Lihat bantuan: %s", f.helpKeyword),
		"",
		"Catatan:",
		"- Data TradingView timeframe 1D",
		"- Output S/R berbasis pivot harian",
	}, "\n")
}
