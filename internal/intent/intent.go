package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the action a piece of recognized text asks for.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindSetReminder
	KindMalformedReminder
	KindSetReminderInteractive
	KindAskWeather
	KindAskNews
	KindAskTime
	KindAskDate
	KindWebSearch
	KindSmallTalk
	KindExit
)

func (k Kind) String() string {
	switch k {
	case KindSetReminder:
		return "set_reminder"
	case KindMalformedReminder:
		return "malformed_reminder"
	case KindSetReminderInteractive:
		return "set_reminder_interactive"
	case KindAskWeather:
		return "ask_weather"
	case KindAskNews:
		return "ask_news"
	case KindAskTime:
		return "ask_time"
	case KindAskDate:
		return "ask_date"
	case KindWebSearch:
		return "web_search"
	case KindSmallTalk:
		return "small_talk"
	case KindExit:
		return "exit"
	default:
		return "unrecognized"
	}
}

// SmallTalkKind distinguishes the canned conversational replies.
type SmallTalkKind int

const (
	TalkGreeting SmallTalkKind = iota
	TalkThanks
)

// Reason explains why text was left unrecognized.
type Reason int

const (
	ReasonEmpty Reason = iota
	ReasonNoMatch
)

// DefaultReminderMessage is used when a reminder phrase carries no task text.
const DefaultReminderMessage = "your task"

// Intent is the classified meaning of one piece of recognized text. Only the
// fields relevant to Kind are populated; an Intent is immutable once parsed.
type Intent struct {
	Kind    Kind
	Minutes int           // KindSetReminder
	Message string        // KindSetReminder
	City    string        // KindAskWeather; empty means "use the default city"
	Count   int           // KindAskNews
	Query   string        // KindWebSearch; empty means "ask for the query"
	Talk    SmallTalkKind // KindSmallTalk
	Reason  Reason        // KindUnrecognized
}

// matcher inspects lowered, trimmed text and either claims it or passes.
type matcher func(text string) (Intent, bool)

// Matchers are tried in this exact order; the first claim wins. The order is
// load-bearing: "what time and date is it" must resolve to time, and the
// reminder patterns must win over the bare "in" token the weather rule eats.
var matchers = []matcher{
	matchReminderWithDuration,
	matchReminderInteractive,
	matchWeather,
	matchNews,
	matchTime,
	matchDate,
	matchWebSearch,
	matchSmallTalk,
	matchExit,
}

// Parse classifies recognized text into an Intent. Input is lowercased and
// trimmed before matching, so callers may pass raw transcription output.
func Parse(text string) Intent {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return Intent{Kind: KindUnrecognized, Reason: ReasonEmpty}
	}
	for _, m := range matchers {
		if in, ok := m(text); ok {
			return in
		}
	}
	return Intent{Kind: KindUnrecognized, Reason: ReasonNoMatch}
}

// reminderPattern accepts e.g. "remind me in 10 minutes to check the oven"
// and "remind me in 2 hours". The "to" is optional, the trailing message may
// be absent.
var reminderPattern = regexp.MustCompile(`remind me in (\d+) (minutes?|hours?) ?(?:to )?(.*)`)

func matchReminderWithDuration(text string) (Intent, bool) {
	if !strings.Contains(text, "remind me in") {
		return Intent{}, false
	}
	m := reminderPattern.FindStringSubmatch(text)
	if m == nil {
		// Trigger phrase present but the duration didn't parse, e.g.
		// "remind me in ten minutes". Let the dispatcher correct the user.
		return Intent{Kind: KindMalformedReminder}, true
	}
	value, err := strconv.Atoi(m[1])
	if err != nil {
		return Intent{Kind: KindMalformedReminder}, true
	}
	minutes := value
	if strings.Contains(m[2], "hour") {
		minutes = value * 60
	}
	message := strings.TrimSpace(m[3])
	if message == "" {
		message = DefaultReminderMessage
	}
	return Intent{Kind: KindSetReminder, Minutes: minutes, Message: message}, true
}

func matchReminderInteractive(text string) (Intent, bool) {
	if strings.HasPrefix(text, "set reminder") || strings.HasPrefix(text, "remind me to") {
		return Intent{Kind: KindSetReminderInteractive}, true
	}
	return Intent{}, false
}

func matchWeather(text string) (Intent, bool) {
	if !strings.Contains(text, "weather") {
		return Intent{}, false
	}
	city := ""
	parts := strings.Fields(text)
	for i, p := range parts {
		if p == "in" {
			// Everything after the first "in" names the city. A trailing
			// "in" leaves city empty and the caller falls back to the
			// configured default.
			city = strings.Join(parts[i+1:], " ")
			break
		}
	}
	return Intent{Kind: KindAskWeather, City: city}, true
}

func matchNews(text string) (Intent, bool) {
	if strings.Contains(text, "news") || strings.Contains(text, "headlines") {
		return Intent{Kind: KindAskNews, Count: 5}, true
	}
	return Intent{}, false
}

func matchTime(text string) (Intent, bool) {
	if strings.Contains(text, "time") {
		return Intent{Kind: KindAskTime}, true
	}
	return Intent{}, false
}

func matchDate(text string) (Intent, bool) {
	if strings.Contains(text, "date") {
		return Intent{Kind: KindAskDate}, true
	}
	return Intent{}, false
}

func matchWebSearch(text string) (Intent, bool) {
	if !strings.HasPrefix(text, "search for") && !strings.HasPrefix(text, "google") && !strings.Contains(text, "search") {
		return Intent{}, false
	}
	query := strings.ReplaceAll(text, "search for", "")
	query = strings.ReplaceAll(query, "google", "")
	query = strings.ReplaceAll(query, "search", "")
	return Intent{Kind: KindWebSearch, Query: strings.TrimSpace(query)}, true
}

func matchSmallTalk(text string) (Intent, bool) {
	for _, g := range []string{"hello", "hi", "hey"} {
		if strings.Contains(text, g) {
			return Intent{Kind: KindSmallTalk, Talk: TalkGreeting}, true
		}
	}
	if strings.Contains(text, "thank") {
		return Intent{Kind: KindSmallTalk, Talk: TalkThanks}, true
	}
	return Intent{}, false
}

// ExitPhrases terminate the assistant when heard anywhere in a command.
var ExitPhrases = []string{"quit", "exit", "stop assistant"}

func matchExit(text string) (Intent, bool) {
	if IsExit(text) {
		return Intent{Kind: KindExit}, true
	}
	return Intent{}, false
}

// IsExit reports whether text contains one of the exit phrases.
func IsExit(text string) bool {
	for _, q := range ExitPhrases {
		if strings.Contains(text, q) {
			return true
		}
	}
	return false
}

// ExtractMinutes pulls a minute count out of a free-form spoken reply by
// keeping only the digit characters, so "10 minutes" and "about 10" both
// yield 10. The second return is false when the reply contains no digits.
func ExtractMinutes(reply string) (int, bool) {
	var digits strings.Builder
	for _, r := range reply {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
