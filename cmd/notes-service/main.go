package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quillmind/quillmind/server/notesservice"
)

func main() {
	// A .env file is optional; real environment variables take precedence.
	_ = godotenv.Load()

	var ov notesservice.Overrides
	cmd := &cobra.Command{
		Use:           "notes-service",
		Short:         "Notes backend with embeddings and question answering",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			return notesservice.Run(ov)
		},
	}
	cmd.Flags().IntVar(&ov.HTTPPort, "port", 0, "Override NOTES_BACKEND_HTTP_PORT")
	cmd.Flags().StringVar(&ov.DBDriver, "db-driver", "", "Override NOTES_BACKEND_DB_DRIVER (sqlite, postgres)")
	cmd.Flags().StringVar(&ov.SQLitePath, "sqlite-path", "", "Override NOTES_BACKEND_SQLITE_PATH")

	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("notes-service exited with error")
		os.Exit(1)
	}
}
