package notifier

import (
	"fmt"
	"os"
	"strings"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/pfrederiksen/animalitos/internal/result"
)

// MaxTweetLength is the Twitter status limit in characters
const MaxTweetLength = 280

// TwitterNotifier posts the latest draws to Twitter
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)

	return &TwitterNotifier{client: twitter.NewClient(httpClient)}, nil
}

// Notify posts one status listing the results. Nothing is posted for an empty slice.
func (n *TwitterNotifier) Notify(results []result.LotteryResult) error {
	if len(results) == 0 {
		return nil
	}

	if _, _, err := n.client.Statuses.Update(formatTweet(results), nil); err != nil {
		return fmt.Errorf("failed to post results for %s: %w", results[0].DateString(), err)
	}
	return nil
}

// formatTweet renders the day's draws, one "hour: animal" line each, within MaxTweetLength
func formatTweet(results []result.LotteryResult) string {
	var b strings.Builder

	if len(results) > 0 {
		fmt.Fprintf(&b, "Resultados Animalitos %s\n\n", results[0].Date.Format("02/01/2006"))
	}
	for _, r := range results {
		fmt.Fprintf(&b, "%s: %s\n", r.Hour, r.Animal)
	}
	b.WriteString("\n#Animalitos #LottoActivo")

	tweet := []rune(b.String())
	if len(tweet) > MaxTweetLength {
		return string(tweet[:MaxTweetLength-3]) + "..."
	}
	return string(tweet)
}
