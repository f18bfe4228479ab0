package market

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Notifier delivers a rendered digest somewhere a human will see it.
type Notifier interface {
	Send(ctx context.Context, text string, markdown bool) error
}

// FormatDigest renders a ranked shortlist as a Markdown message. Names
// link to the negotiation page so a phone tap lands on the bid form.
func FormatDigest(candidates []Candidate, funds int64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Transfer opportunities* (funds %s)\n", formatMoney(funds))
	if len(candidates) == 0 {
		b.WriteString("\nNothing actionable right now.")
		return b.String()
	}

	for i, c := range candidates {
		fmt.Fprintf(&b, "\n%d. [%s](%s) %s, %d\n", i+1, c.Name, c.Url, c.Position, c.Age)
		fmt.Fprintf(&b, "   buy %s, forecast +%s (roi %.2f%%)\n",
			formatMoney(c.Snapshot.BuyPrice),
			formatMoney(c.Snapshot.ForecastSell),
			c.Snapshot.RoiPercent)
		fmt.Fprintf(&b, "   deadline %s\n", c.Deadline.Format("Mon 15:04"))
	}
	return b.String()
}

// Notify renders and sends the digest. A nil notifier is a no-op so the
// pipeline can run unwired.
func Notify(ctx context.Context, notifier Notifier, candidates []Candidate, funds int64) error {
	if notifier == nil {
		return nil
	}
	return notifier.Send(ctx, FormatDigest(candidates, funds), true)
}

// formatMoney renders an amount the way the site does, dot-separated
// thousands.
func formatMoney(n int64) string {
	negative := n < 0
	if negative {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	out := strings.Join(groups, ".")
	if negative {
		out = "-" + out
	}
	return out + " baht"
}
