// Package history provides implementations of the HistorySource interface
// for the developer tools hindsight can read. Each source knows how to
// locate one tool's on-disk storage and normalise its native records into
// the canonical Conversation model.
//
// Sources are handed to the recall service at startup.
package history
