package main

import (
	"errors"
	"net/url"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/knowfox/smolweb/gemini"
)

type ExampleHandler struct {
}

func (h ExampleHandler) ServeGemini(w gemini.ResponseWriter, req *gemini.Request) {
	log.Info().
		Str("path", req.URL.Path).
		Str("user", strings.Join(req.UserName(), " ")).
		Msg("Request")
	switch req.URL.Path {
	case "/":
		err := w.WriteStatusMsg(gemini.StatusSuccess, "text/gemini")
		requireNoError(err)
		_, err = w.WriteBody([]byte("# Hello, world!\n\n=> /user Who am I?\n=> /search Search\n"))
		requireNoError(err)
	case "/user":
		if req.Certificate() == nil {
			w.WriteStatusMsg(gemini.StatusCertRequired, "Authentication Required")
			return
		}
		w.WriteStatusMsg(gemini.StatusSuccess, "text/gemini")
		w.WriteBody([]byte(req.Certificate().Subject.CommonName))
	case "/search":
		if req.URL.RawQuery == "" {
			w.WriteStatusMsg(gemini.StatusPlainInput, "Search for")
			return
		}
		query, err := url.QueryUnescape(req.URL.RawQuery)
		if err != nil {
			w.WriteStatusMsg(gemini.StatusBadRequest, "Malformed query")
			return
		}
		w.WriteStatusMsg(gemini.StatusSuccess, "text/gemini")
		w.WriteBody([]byte("# No results for " + query + "\n"))
	case "/die":
		requireNoError(errors.New("must die"))
	default:
		gemini.NotFound(w, req)
	}
}

func requireNoError(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	var args struct {
		Host string `arg:"--host" default:":1965" help:"listen on host and port.  Example: hostname:1965"`
		Cert string `arg:"--cert" default:"server.crt.pem" help:"certificate file"`
		Key  string `arg:"--key" default:"server.key.pem" help:"private key associated with certificate file"`
	}
	arg.MustParse(&args)

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	handler := ExampleHandler{}

	err := gemini.ListenAndServe(args.Host, args.Cert, args.Key, gemini.TrapPanic(handler.ServeGemini))
	if err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
