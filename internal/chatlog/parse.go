// Package chatlog turns an exported WhatsApp transcript into message records.
//
// The pipeline is Detect (which timestamp grammar the export uses), Split
// (cut the text at every "<date>, <time> - " boundary) and Build (parse the
// timestamps, separate sender from body, derive calendar fields). All three
// are pure functions and safe for concurrent use.
package chatlog

import (
	"errors"
	"sort"
)

// ErrNoMessages means no message boundary was found anywhere in the text,
// which usually points at an unsupported export format.
var ErrNoMessages = errors.New("no chat messages found")

// Parse runs the whole pipeline on one transcript. The only error is
// ErrNoMessages; unparseable rows are dropped and counted in Result.Dropped.
func Parse(text string) (Result, error) {
	g := Detect(text)
	res := BuildResult(Split(text, g), g)
	if res.Matches == 0 {
		return res, ErrNoMessages
	}
	return res, nil
}

// Users lists the distinct human senders in records, sorted, with OverallUser
// first. GroupNotification is left out.
func Users(records []Record) []string {
	seen := make(map[string]struct{})
	var users []string
	for _, r := range records {
		if r.IsNotification() {
			continue
		}
		if _, ok := seen[r.Sender]; ok {
			continue
		}
		seen[r.Sender] = struct{}{}
		users = append(users, r.Sender)
	}
	sort.Strings(users)
	return append([]string{OverallUser}, users...)
}

// ForUser returns the records of one sender, or all records for OverallUser.
func ForUser(records []Record, user string) []Record {
	if user == "" || user == OverallUser {
		return records
	}
	var out []Record
	for _, r := range records {
		if r.Sender == user {
			out = append(out, r)
		}
	}
	return out
}
