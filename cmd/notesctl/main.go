package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quillmind/quillmind/client"
	"github.com/quillmind/quillmind/client/app"
	"github.com/quillmind/quillmind/client/chat"
	"github.com/quillmind/quillmind/client/notestore"
)

var (
	serviceURL string
	apiKey     string
	debug      bool
)

func main() {
	_ = godotenv.Load()
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	cfg, err := client.LoadConfig()
	if err != nil {
		cfg = client.Config{BaseURL: "http://localhost:8080"}
	}

	rootCmd := &cobra.Command{
		Use:           "notesctl",
		Short:         "Notes with a chat that answers from them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", cfg.BaseURL, "Base URL of the notes backend")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", cfg.APIKey, "Bearer API key for the notes backend")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", cfg.Debug, "Enable verbose debug output")

	rootCmd.AddCommand(newListCmd(cfg))
	rootCmd.AddCommand(newAddCmd(cfg))
	rootCmd.AddCommand(newEditCmd(cfg))
	rootCmd.AddCommand(newDeleteCmd(cfg))
	rootCmd.AddCommand(newAskCmd(cfg))
	rootCmd.AddCommand(newChatCmd(cfg))
	return rootCmd
}

// session is one loaded controller bound to the command's output.
type session struct {
	ctrl *app.Controller
	out  io.Writer
}

// withSession builds a controller, loads the notes and runs fn. Queued work is
// awaited before returning; any notification raised along the way fails the
// command.
func withSession(cmd *cobra.Command, cfg client.Config, fn func(ctx context.Context, s *session) error) error {
	cfg.BaseURL = serviceURL
	cfg.APIKey = apiKey
	cfg.Debug = debug

	c, err := client.New(cfg.BaseURL, append(cfg.Options(), client.WithLogger(log.Logger))...)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	var opts []notestore.Option
	if cfg.LoadAttempts > 0 {
		opts = append(opts, notestore.WithLoadAttempts(cfg.LoadAttempts))
	}
	if cfg.DeleteAttempts > 0 {
		opts = append(opts, notestore.WithDeleteAttempts(cfg.DeleteAttempts))
	}
	ctrl := app.New(c, log.Logger, opts...)
	defer func() { _ = ctrl.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctrl.Start(ctx)
	s := &session{ctrl: ctrl, out: cmd.OutOrStdout()}
	if err := s.failure(); err != nil {
		return err
	}

	start := time.Now()
	runErr := fn(ctx, s)
	awaitCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if err := ctrl.Await(awaitCtx); err != nil && runErr == nil {
		runErr = err
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("command finished")
	if runErr != nil {
		return runErr
	}
	return s.failure()
}

// failure turns pending notifications into an error.
func (s *session) failure() error {
	st := s.ctrl.State()
	if len(st.Notifications) == 0 {
		return nil
	}
	msgs := make([]string, len(st.Notifications))
	for i, n := range st.Notifications {
		msgs[i] = fmt.Sprintf("%s: %s", n.Kind, n.Message)
	}
	s.ctrl.DismissNotifications()
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func (s *session) printNotes() {
	st := s.ctrl.State()
	if len(st.Notes) == 0 {
		fmt.Fprintln(s.out, "(no notes)")
		return
	}
	for _, e := range st.Notes {
		fmt.Fprintf(s.out, "%d\t%s\t%s\n", e.Note.ID, e.Note.Title, oneLine(e.Note.Content))
	}
}

func (s *session) printLastAnswer() {
	tr := s.ctrl.State().Transcript
	if len(tr) == 0 {
		return
	}
	last := tr[len(tr)-1]
	switch {
	case last.Role != chat.RoleAssistant:
	case last.Failed:
		errorColor.Fprintln(s.out, last.Content)
	default:
		answerColor.Fprintln(s.out, last.Content)
	}
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}
