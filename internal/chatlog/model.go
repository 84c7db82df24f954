package chatlog

import "time"

// GroupNotification is the sender of lines that carry no "Name: " header,
// such as "Alice added Bob" or the end-to-end encryption banner.
const GroupNotification = "group_notification"

// OverallUser is the pseudo-user standing for the whole chat.
const OverallUser = "Overall"

// MediaOmitted is the body WhatsApp writes in place of an attachment when a
// chat is exported without media.
const MediaOmitted = "<Media omitted>"

// Pair is one message boundary and the raw text that follows it.
type Pair struct {
	Stamp string // raw "<date>, <time> - " text as matched
	Chunk string // "Sender: body" or a bare notification
	Line  int    // 1-based line of the boundary in the transcript
}

type Record struct {
	Date      time.Time `json:"date" yaml:"date"`
	Sender    string    `json:"sender" yaml:"sender"`
	Body      string    `json:"body" yaml:"body"`
	OnlyDate  string    `json:"only_date" yaml:"only_date"` // YYYY-MM-DD
	Year      int       `json:"year" yaml:"year"`
	MonthNum  int       `json:"month_num" yaml:"month_num"`
	MonthName string    `json:"month" yaml:"month"`
	Day       int       `json:"day" yaml:"day"`
	DayName   string    `json:"day_name" yaml:"day_name"`
	Hour      int       `json:"hour" yaml:"hour"`
	Minute    int       `json:"minute" yaml:"minute"`
	Period    string    `json:"period" yaml:"period"`
	Line      int       `json:"line" yaml:"line"`
}

func (r Record) IsNotification() bool {
	return r.Sender == GroupNotification
}

// IsMedia reports whether the body is the exporter's media placeholder.
func (r Record) IsMedia() bool {
	return r.Body == MediaOmitted
}

// Result is the outcome of parsing one transcript.
type Result struct {
	Grammar Grammar
	Layout  string // winning timestamp layout, or LayoutPermissive
	Matches int    // boundary matches found by the splitter
	Dropped int    // rows whose timestamp could not be parsed
	Records []Record
}
