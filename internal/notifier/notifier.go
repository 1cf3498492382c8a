package notifier

import (
	"fmt"

	"github.com/pfrederiksen/animalitos/internal/result"
)

// Notifier defines the interface for publishing draw results
type Notifier interface {
	// Notify publishes the given results, all drawn on the same day
	Notify(results []result.LotteryResult) error
}

// Channel names a publishing destination
type Channel string

const (
	ChannelTwitter  Channel = "twitter"
	ChannelTelegram Channel = "telegram"
)

// ParseChannel validates a channel name
func ParseChannel(name string) (Channel, error) {
	switch c := Channel(name); c {
	case ChannelTwitter, ChannelTelegram:
		return c, nil
	default:
		return "", fmt.Errorf("unknown notification channel: %s (must be 'twitter' or 'telegram')", name)
	}
}

// New creates the notifier for channel with credentials from the environment
func New(channel Channel) (Notifier, error) {
	switch channel {
	case ChannelTwitter:
		n, err := NewTwitterNotifier()
		if err != nil {
			return nil, err
		}
		return n, nil
	case ChannelTelegram:
		n, err := NewTelegramNotifier()
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notification channel: %s", channel)
	}
}
