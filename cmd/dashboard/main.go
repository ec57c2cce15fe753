package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"solarweather/internal/config"
	"solarweather/internal/dashboard"
	"solarweather/internal/logger"
	"solarweather/internal/refresh"
	"solarweather/internal/view"
)

const (
	renderInterval = time.Second
	fetchTimeout   = 15 * time.Second
	dateLayout     = "2006-01-02"
	clearScreen    = "\033[H\033[2J"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (default configs/config.yml)")
	baseURL := flag.String("url", "", "server base URL (default client.base_url)")
	name := flag.String("dashboard", dashboard.Weather.Name, "weather, solar or solar-history")
	date := flag.String("date", "", "initial day for solar-history (YYYY-MM-DD, default today)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
		os.Exit(1)
	}
	// stdout is repainted every frame, so log lines go to stderr
	log := logger.GetTo(logger.WarnLevel, os.Stderr)

	def, ok := dashboard.ByName(*name)
	if !ok {
		log.Fatalw("unknown dashboard", "dashboard", *name)
	}
	if *baseURL == "" {
		*baseURL = cfg.Client.BaseURL
	}
	loc := cfg.Dashboard.Location()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	page := view.NewPage(def.Layout())
	client := dashboard.NewClient(*baseURL, &http.Client{Timeout: fetchTimeout})
	updater := dashboard.NewUpdater(def, client, page, loc, log)

	input := readLines(ctx, os.Stdin)

	if def.Query.History {
		initial := time.Now().In(loc)
		if *date != "" {
			if initial, err = time.ParseInLocation(dateLayout, *date, loc); err != nil {
				log.Fatalw("invalid date", "date", *date, "err", err)
			}
		}
		dates := make(chan time.Time)
		go forwardDates(ctx, input, dates, loc, log)
		if err := updater.InitHistory(ctx, dates, initial); err != nil {
			log.Errorw("initial load failed", "err", err)
		}
	} else {
		ctrl := refresh.NewController(page, log)
		defer ctrl.Close()
		if err := updater.Init(ctx, ctrl); err != nil {
			log.Errorw("initial load failed", "err", err)
		}
		actions := make(chan refresh.Action)
		go forwardActions(ctx, input, actions, log)
		go ctrl.Listen(ctx, actions)
	}

	renderLoop(ctx, page, os.Stdout, log)
}

// readLines emits trimmed stdin lines until ctx is done or input ends.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case out <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// forwardActions maps "r" to a refresh and a number to a period change.
func forwardActions(ctx context.Context, lines <-chan string, actions chan<- refresh.Action, log *logger.Logger) {
	for line := range lines {
		var a refresh.Action
		switch {
		case line == "r":
			a = refresh.ActionRefresh{}
		default:
			seconds, err := strconv.Atoi(line)
			if err != nil {
				log.Warnw("unrecognized input", "input", line)
				continue
			}
			a = refresh.ActionPeriod{Seconds: seconds}
		}
		select {
		case actions <- a:
		case <-ctx.Done():
			return
		}
	}
}

func forwardDates(ctx context.Context, lines <-chan string, dates chan<- time.Time, loc *time.Location, log *logger.Logger) {
	defer close(dates)
	for line := range lines {
		d, err := time.ParseInLocation(dateLayout, line, loc)
		if err != nil {
			log.Warnw("invalid date", "input", line, "err", err)
			continue
		}
		select {
		case dates <- d:
		case <-ctx.Done():
			return
		}
	}
}

func renderLoop(ctx context.Context, page *view.Page, w io.Writer, log *logger.Logger) {
	t := time.NewTicker(renderInterval)
	defer t.Stop()
	for {
		fmt.Fprint(w, clearScreen)
		if err := page.Render(w); err != nil {
			log.Errorw("render failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
