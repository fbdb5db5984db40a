package main

import (
	_ "embed"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tomz197/glider/internal/config"
	"github.com/tomz197/glider/internal/logging"
)

//go:embed index.html
var htmlPage string

func main() {
	configDir := flag.String("config", ".", "directory containing glider.toml")
	flag.Parse()

	settings, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.NewConsole(settings.Log.Level)

	addr := net.JoinHostPort(settings.Web.Host, settings.Web.Port)
	log.Info().Msgf("Starting web server on http://%s", addr)
	if err := http.ListenAndServe(addr, newHandler(settings, log)); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

// newHandler serves the landing page with connect instructions.
func newHandler(settings config.Settings, log zerolog.Logger) http.Handler {
	page := strings.NewReplacer(
		"{{.SSHHost}}", settings.Web.DisplayHost,
		"{{.SSHPort}}", sshPortFlag(settings.SSH.Port),
	).Replace(htmlPage)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
		log.Debug().Str("remote", r.RemoteAddr).Msg("served landing page")
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	return mux
}

// sshPortFlag renders the -p option for the ssh command, empty for port 22.
func sshPortFlag(port string) string {
	if port == "" || port == "22" {
		return ""
	}
	return "-p " + port + " "
}
