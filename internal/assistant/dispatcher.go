package assistant

import (
	"context"
	"fmt"
	"time"

	"hearsay/internal/browser"
	"hearsay/internal/history"
	"hearsay/internal/intent"
	"hearsay/internal/reminder"
	"hearsay/internal/speech"
	"hearsay/pkg/logging"
)

// headlinePause is the gap between spoken headlines so they don't run into
// each other.
const headlinePause = 500 * time.Millisecond

// Sayer is the non-blocking speech surface the dispatcher talks through.
// *speech.Queue satisfies it.
type Sayer interface {
	Say(text string)
	SayPaced(text string, pause time.Duration)
}

// WeatherFetcher returns a speakable weather summary for a city.
type WeatherFetcher interface {
	Current(ctx context.Context, city string) (string, error)
}

// NewsFetcher returns up to count headline titles.
type NewsFetcher interface {
	TopHeadlines(ctx context.Context, count int) ([]string, error)
}

// Recorder persists one exchange to the audit log.
type Recorder interface {
	Record(ex history.Exchange) error
}

// Dispatcher maps a parsed Intent to its side effects: at most one reminder
// mutation, at most one fetch, at most one browser launch, plus speech. It
// shares nothing with the reminder loop beyond the Store's own lock.
type Dispatcher struct {
	Queue       Sayer
	Listener    speech.Listener
	Reminders   *reminder.Store
	Weather     WeatherFetcher
	News        NewsFetcher
	History     Recorder // optional
	OpenBrowser func(url string) error
	DefaultCity string

	// FollowUpTimeout/FollowUpPhraseLimit bound the extra listens of
	// interactive sub-flows.
	FollowUpTimeout     time.Duration
	FollowUpPhraseLimit time.Duration

	// Now is the clock, swappable in tests.
	Now func() time.Time
}

func (d *Dispatcher) clock() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Dispatch classifies text and executes the matched action, using the
// dispatcher's own listener for interactive sub-flows. It returns true when
// the assistant should shut down.
func (d *Dispatcher) Dispatch(ctx context.Context, text string) bool {
	return d.dispatch(ctx, text, d.Listener)
}

// DispatchRemote handles a command that arrived over the gateway. Remote
// clients have no microphone to follow up on, so interactive sub-flows see
// silence and cancel themselves.
func (d *Dispatcher) DispatchRemote(ctx context.Context, text string) bool {
	return d.dispatch(ctx, text, deafListener{})
}

func (d *Dispatcher) dispatch(ctx context.Context, text string, listener speech.Listener) bool {
	in := intent.Parse(text)
	logging.Debug("dispatching %q as %s", text, in.Kind)

	var reply string
	exit := false

	switch in.Kind {
	case intent.KindSetReminder:
		reply = d.setReminder(in.Minutes, in.Message)

	case intent.KindMalformedReminder:
		reply = "Please say: remind me in X minutes to do Y."
		d.Queue.Say(reply)

	case intent.KindSetReminderInteractive:
		reply = d.setReminderInteractive(ctx, listener)

	case intent.KindAskWeather:
		reply = d.askWeather(ctx, in.City)

	case intent.KindAskNews:
		reply = d.askNews(ctx, in.Count)

	case intent.KindAskTime:
		reply = fmt.Sprintf("The time is %s", d.clock().Format("03:04 PM"))
		d.Queue.Say(reply)

	case intent.KindAskDate:
		reply = fmt.Sprintf("Today is %s", d.clock().Format("Monday, January 02, 2006"))
		d.Queue.Say(reply)

	case intent.KindWebSearch:
		reply = d.webSearch(ctx, in.Query, listener)

	case intent.KindSmallTalk:
		if in.Talk == intent.TalkThanks {
			reply = "You are welcome!"
		} else {
			reply = "Hello! How can I help you?"
		}
		d.Queue.Say(reply)

	case intent.KindExit:
		reply = "Goodbye!"
		d.Queue.Say(reply)
		exit = true

	default:
		if in.Reason == intent.ReasonEmpty {
			reply = "I didn't catch that. Please repeat."
		} else {
			reply = "Sorry, I don't have a built-in action for that. I can search the web if you like. Say 'search' followed by your query."
		}
		d.Queue.Say(reply)
	}

	d.record(text, in.Kind.String(), reply)
	return exit
}

func (d *Dispatcher) setReminder(minutes int, message string) string {
	if minutes <= 0 {
		reply := "Please say: remind me in X minutes to do Y."
		d.Queue.Say(reply)
		return reply
	}
	r := d.Reminders.Schedule(minutes, message)
	reply := fmt.Sprintf("Okay. I will remind you in %d minutes about %s.", minutes, r.Message)
	d.Queue.Say(reply)
	return reply
}

// setReminderInteractive acquires the minute count and the message through
// two follow-up listens. Silence on the first one cancels the whole flow.
func (d *Dispatcher) setReminderInteractive(ctx context.Context, listener speech.Listener) string {
	d.Queue.Say("For when should I set the reminder? Say in how many minutes.")
	answer := d.listenFollowUp(ctx, listener)
	minutes, ok := intent.ExtractMinutes(answer)
	if !ok {
		reply := "I couldn't parse the time. Reminder cancelled."
		d.Queue.Say(reply)
		return reply
	}

	d.Queue.Say("What should I remind you about?")
	message := d.listenFollowUp(ctx, listener)
	if message == "" {
		message = intent.DefaultReminderMessage
	}
	return d.setReminder(minutes, message)
}

func (d *Dispatcher) askWeather(ctx context.Context, city string) string {
	if city == "" {
		city = d.DefaultCity
	}
	summary, err := d.Weather.Current(ctx, city)
	if err != nil {
		logging.Error("weather fetch failed: %v", err)
		reply := fmt.Sprintf("Sorry, I couldn't fetch the weather. %v", err)
		d.Queue.Say(reply)
		return reply
	}
	reply := fmt.Sprintf("Weather in %s: %s", city, summary)
	d.Queue.Say(reply)
	return reply
}

func (d *Dispatcher) askNews(ctx context.Context, count int) string {
	headlines, err := d.News.TopHeadlines(ctx, count)
	if err != nil {
		logging.Error("news fetch failed: %v", err)
		reply := fmt.Sprintf("Sorry, I can't fetch the news. %v", err)
		d.Queue.Say(reply)
		return reply
	}
	reply := "Here are the top headlines."
	d.Queue.Say(reply)
	for _, h := range headlines {
		d.Queue.SayPaced(h, headlinePause)
	}
	return reply
}

func (d *Dispatcher) webSearch(ctx context.Context, query string, listener speech.Listener) string {
	if query == "" {
		d.Queue.Say("What should I search for?")
		query = d.listenFollowUp(ctx, listener)
	}
	if query == "" {
		reply := "Never mind, search cancelled."
		d.Queue.Say(reply)
		return reply
	}
	reply := fmt.Sprintf("Searching for %s on the web.", query)
	d.Queue.Say(reply)
	if err := d.OpenBrowser(browser.SearchURL(query)); err != nil {
		// Fire-and-forget: the search was announced, a failed launch is
		// only worth a log line.
		logging.Error("browser launch failed: %v", err)
	}
	return reply
}

// listenFollowUp runs one bounded listen for an interactive sub-flow. Any
// listen failure is treated as silence, which cancels the sub-flow upstream.
func (d *Dispatcher) listenFollowUp(ctx context.Context, listener speech.Listener) string {
	answer, err := listener.Listen(ctx, d.FollowUpTimeout, d.FollowUpPhraseLimit)
	if err != nil {
		logging.Error("follow-up listen failed: %v", err)
		return ""
	}
	return answer
}

func (d *Dispatcher) record(heard, kind, reply string) {
	if d.History == nil {
		return
	}
	err := d.History.Record(history.Exchange{Heard: heard, Intent: kind, Reply: reply, At: d.clock()})
	if err != nil {
		logging.Error("failed to record exchange: %v", err)
	}
}

// deafListener hears nothing, ever. Used for gateway commands.
type deafListener struct{}

func (deafListener) Listen(context.Context, time.Duration, time.Duration) (string, error) {
	return "", nil
}
