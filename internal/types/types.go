package types

import "time"

// Bar is a single OHLCV bar from the data provider.
type Bar struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Time returns the bar timestamp in the local timezone.
func (b Bar) Time() time.Time { return time.Unix(b.Ts, 0) }

// Levels holds pivot-based support/resistance prices computed from a
// completed daily bar. S1 > S2 > S3 sit below the close, R1 < R2 < R3 above.
type Levels struct {
	S1, S2, S3 float64
	R1, R2, R3 float64
	BarTime    string
}

// QuoteResult is a point-in-time snapshot for one symbol. Levels is nil when
// support/resistance could not be computed (index quotes never carry levels).
type QuoteResult struct {
	Symbol, Exchange            string
	Open, High, Low, Close, Vol float64
	PrevClose                   float64
	Timestamp                   string
	Levels                      *Levels
}

// InboundMessage is one chat message extracted from a webhook event.
// Ephemeral, never persisted.
type InboundMessage struct {
	ChatID     string
	Text       string
	FromMe     bool
	ReceivedAt time.Time
}
