package chain

import (
	"fmt"
	"time"
)

// nseTimestampLayout is the refresh-marker format NSE embeds in option-chain
// responses, e.g. "14-Mar-2024 18:35:00". It carries no zone.
const nseTimestampLayout = "02-Jan-2006 15:04:05"

// istOffset shifts an instant onto the IST wall clock.
const istOffset = 5*time.Hour + 30*time.Minute

// DeriveTradingDate derives the aggregate's partition key from the snapshot's
// own timestamp: parse, shift the instant by +5:30, take the date. Keying on
// the data's timestamp rather than the poll's wall clock means a fetch landing
// just after midnight still files under the trading date it describes.
func DeriveTradingDate(raw string) (string, error) {
	t, err := time.Parse(nseTimestampLayout, raw)
	if err != nil {
		// Occasionally seen with an explicit zone; accept RFC 3339 too.
		rt, rerr := time.Parse(time.RFC3339, raw)
		if rerr != nil {
			return "", fmt.Errorf("parse snapshot timestamp %q: %w", raw, err)
		}
		t = rt
	}
	return t.UTC().Add(istOffset).Format("2006-01-02"), nil
}
