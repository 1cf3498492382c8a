// Package result defines the lottery draw records extracted from the weekly
// results pages and the Store they are merged into.
//
// A LotteryResult is one observed draw: the day it happened, the hour label of
// the draw slot and the animal drawn. Slots without a published draw carry the
// Sentinel animal and are never stored.
package result
