// Package scraper provides HTTP fetching and HTML parsing for the weekly
// animalitos results pages.
//
// A Client fetches one period page and a Parser turns the page's results table
// into a WeekPage: the start date from the table header, one hour label per body
// row and the value cells chunked in groups of seven, one per day of the week.
// WeekPage.Results lines those up into dated draws.
package scraper
