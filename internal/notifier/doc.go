// Package notifier publishes the draws of the most recent collected day.
//
// The Twitter notifier posts one status per run using OAuth1 user credentials
// taken from the environment; the Telegram notifier sends one HTML message
// through the Bot API. The dry-run notifier prints the message for either
// channel instead of sending it.
package notifier
