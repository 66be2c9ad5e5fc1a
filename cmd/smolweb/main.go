package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexflint/go-arg"
	"github.com/rs/zerolog"

	"github.com/knowfox/smolweb"
)

type args struct {
	URL     string `arg:"positional" help:"gemini://, gopher:// or finger:// URL, a bare host name or a search query; defaults to the start page"`
	Config  string `arg:"-c,--config" help:"YAML config file"`
	Verify  bool   `arg:"--verify" help:"verify Gemini server certificates"`
	Verbose bool   `arg:"-v,--verbose" help:"log each fetch attempt"`
}

func (args) Description() string {
	return "smolweb fetches a page from Gemini, Gopher or Finger and prints it"
}

func main() {
	var a args
	arg.MustParse(&a)

	level := zerolog.WarnLevel
	if a.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().
		Logger()

	cfg := &smolweb.Config{}
	if a.Config != "" {
		var err error
		cfg, err = smolweb.LoadConfig(a.Config)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load config")
		}
	}
	if a.Verify {
		skip := false
		cfg.InsecureSkipVerify = &skip
	}
	cfg = cfg.WithDefaults()

	url := a.URL
	if url == "" {
		url = cfg.StartPage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	nav := smolweb.NewNavigator(cfg)
	nav.Log = log
	content, err := nav.Navigate(ctx, url)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Print(content)
}
