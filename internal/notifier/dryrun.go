package notifier

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pfrederiksen/animalitos/internal/result"
)

// DryRunNotifier prints what would be posted without actually posting
type DryRunNotifier struct {
	out     io.Writer
	channel Channel
}

// NewDryRunNotifier creates a dry-run notifier for channel writing to out, or stdout when out is nil
func NewDryRunNotifier(out io.Writer, channel Channel) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out, channel: channel}
}

// Notify prints the message that would be sent
func (n *DryRunNotifier) Notify(results []result.LotteryResult) error {
	if len(results) == 0 {
		fmt.Fprintln(n.out, "No results to post")
		return nil
	}

	var header, msg string
	switch n.channel {
	case ChannelTelegram:
		header, msg = "--- Telegram message ---", formatTelegram(results)
	default:
		header, msg = "--- Tweet ---", formatTweet(results)
	}

	fmt.Fprintln(n.out, header)
	fmt.Fprintln(n.out, msg)
	fmt.Fprintf(n.out, "\n(Length: %d characters)\n", utf8.RuneCountInString(msg))
	return nil
}
