package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hearsay/internal/assistant"
	"hearsay/internal/audio"
	"hearsay/internal/browser"
	"hearsay/internal/config"
	"hearsay/internal/fetch"
	"hearsay/internal/gateway"
	"hearsay/internal/history"
	"hearsay/internal/reminder"
	"hearsay/internal/speech"
	"hearsay/pkg/logging"
)

func main() {
	var (
		verboseFlag bool
		debugFlag   bool
		traceFlag   bool
		helpFlag    bool
		versionFlag bool
		configFlag  string
		cityFlag    string
		dbFlag      string
		gatewayFlag string
		micFlag     bool
		historyFlag int
	)

	flag.BoolVar(&verboseFlag, "v", false, "Enable verbose logging (info level)")
	flag.BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	flag.BoolVar(&traceFlag, "trace", false, "Enable trace logging (most detailed)")
	flag.BoolVar(&helpFlag, "help", false, "Show help information")
	flag.BoolVar(&versionFlag, "version", false, "Show version information")
	flag.StringVar(&configFlag, "config", "", "Path to the config file (default: .hearsay/config.json)")
	flag.StringVar(&cityFlag, "city", "", "Default city for weather lookups")
	flag.StringVar(&dbFlag, "db", "", "Path to the exchange history database")
	flag.StringVar(&gatewayFlag, "gateway", "", "Serve the websocket gateway on this address (e.g. :8765)")
	flag.BoolVar(&micFlag, "mic", false, "Listen on the microphone (requires a whisper binary)")
	flag.IntVar(&historyFlag, "history", 0, "Print the n most recent exchanges and exit")
	flag.Parse()

	if helpFlag {
		fmt.Println("Hearsay - A voice-driven command assistant")
		fmt.Println("\nUsage:")
		fmt.Println("  hearsay [options]")
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if versionFlag {
		fmt.Println("Hearsay Version 0.3.0")
		os.Exit(0)
	}

	if traceFlag {
		logging.SetVerbosity(logging.LogLevelTrace)
		logging.Info("Trace logging enabled")
	} else if debugFlag {
		logging.SetVerbosity(logging.LogLevelDebug)
		logging.Info("Debug logging enabled")
	} else {
		logging.SetVerbosity(logging.LogLevelInfo)
		if verboseFlag {
			logging.Info("Verbose logging enabled")
		}
	}

	var cfg config.Config
	var err error
	if configFlag != "" {
		cfg, err = config.LoadFrom(configFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logging.Error("Failed to load config, continuing with defaults: %v", err)
	}
	if cityFlag != "" {
		cfg.DefaultCity = cityFlag
	}
	if dbFlag != "" {
		cfg.HistoryDB = dbFlag
	}
	if gatewayFlag != "" {
		cfg.GatewayAddr = gatewayFlag
	}

	if historyFlag > 0 {
		printHistory(cfg.HistoryDB, historyFlag)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Speech output: real TTS when one is installed, log lines otherwise.
	var speaker speech.Speaker
	if cmdSpeaker, err := speech.NewCommandSpeaker(); err == nil {
		speaker = cmdSpeaker
	} else {
		logging.Info("No TTS program available, echoing speech to the log: %v", err)
		speaker = speech.EchoSpeaker{}
	}
	queue := speech.NewQueue(speaker)

	// Speech input: microphone with a local recognizer when asked for,
	// typed input otherwise. Typed input doubles as the manual trigger.
	var listener speech.Listener
	var trigger chan struct{}
	if micFlag {
		transcriber, err := audio.NewWhisperTranscriber()
		if err != nil {
			logging.Error("Microphone mode unavailable: %v", err)
			os.Exit(1)
		}
		listener = audio.NewMicListener(transcriber, nil)
		// With the microphone listening, Enter presses become manual
		// triggers.
		trigger = make(chan struct{}, 1)
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			}
			close(trigger)
		}()
	} else {
		listener = speech.NewTerminalListener(os.Stdin)
	}

	store := reminder.NewStore(time.Second)
	go store.Run(ctx, func(r reminder.Reminder) {
		queue.Say(fmt.Sprintf("Reminder: %s", r.Message))
	})

	var recorder assistant.Recorder
	hist, err := history.Open(cfg.HistoryDB)
	if err != nil {
		logging.Error("Exchange history disabled: %v", err)
	} else {
		defer hist.Close()
		recorder = hist
	}

	dispatcher := &assistant.Dispatcher{
		Queue:               queue,
		Listener:            listener,
		Reminders:           store,
		Weather:             fetch.NewWeatherClient(cfg.OpenWeatherAPIKey),
		News:                fetch.NewNewsClient(cfg.NewsAPIKey),
		History:             recorder,
		OpenBrowser:         browser.Open,
		DefaultCity:         cfg.DefaultCity,
		FollowUpTimeout:     cfg.FollowUpListen.Timeout(),
		FollowUpPhraseLimit: cfg.FollowUpListen.PhraseLimit(),
	}

	if cfg.GatewayAddr != "" {
		gw := gateway.NewServer()
		queue.SetObserver(gw.BroadcastUtterance)
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", gw.HandleWebSocket)
		go func() {
			logging.Info("Gateway listening on %s", cfg.GatewayAddr)
			if err := http.ListenAndServe(cfg.GatewayAddr, mux); err != nil {
				logging.Error("Gateway server stopped: %v", err)
			}
		}()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case text := <-gw.Commands():
					dispatcher.DispatchRemote(ctx, text)
				}
			}
		}()
	}

	queue.Start(ctx)

	// SIGINT takes the same farewell path as the exit intent.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		queue.Say("Shutting down. Bye.")
		cancel()
	}()

	session := &assistant.Session{
		Dispatcher:    dispatcher,
		Listener:      listener,
		Queue:         queue,
		WakeListen:    cfg.WakeListen,
		CommandListen: cfg.CommandListen,
		ManualListen:  cfg.ManualListen,
		Trigger:       trigger,
	}
	if err := session.Run(ctx); err != nil {
		logging.Error("Session ended with error: %v", err)
	}

	// Give the queue a moment to finish the farewell before tearing down.
	time.Sleep(500 * time.Millisecond)
	cancel()
	queue.Wait()
	logging.Info("Hearsay stopped")
}

func printHistory(dbPath string, n int) {
	hist, err := history.Open(dbPath)
	if err != nil {
		logging.Error("Failed to open history: %v", err)
		os.Exit(1)
	}
	defer hist.Close()

	exchanges, err := hist.Recent(n)
	if err != nil {
		logging.Error("Failed to read history: %v", err)
		os.Exit(1)
	}
	for _, ex := range exchanges {
		fmt.Printf("%s  [%s]\n  heard: %s\n  said:  %s\n",
			ex.At.Format(time.RFC3339), ex.Intent, ex.Heard, ex.Reply)
	}
}
