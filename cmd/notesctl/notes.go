package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillmind/quillmind/client"
	"github.com/quillmind/quillmind/client/notestore"
)

func newListCmd(cfg client.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, func(_ context.Context, s *session) error {
				s.printNotes()
				return nil
			})
		},
	}
}

func newAddCmd(cfg client.Config) *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note and save it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, func(ctx context.Context, s *session) error {
				s.ctrl.CreateNote()
				if title == "" {
					title = notestore.DefaultTitle
				}
				if content == "" {
					content = notestore.DefaultContent
				}
				s.ctrl.SetDraft(title, content)
				if !s.ctrl.Save(ctx) {
					return s.failure()
				}
				saved := s.ctrl.State().Notes
				fmt.Fprintf(s.out, "saved note %d\n", saved[len(saved)-1].Note.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Note title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "Note content")
	return cmd
}

func newEditCmd(cfg client.Config) *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a note's title and/or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("content") {
				return fmt.Errorf("--title or --content required")
			}
			return withSession(cmd, cfg, func(ctx context.Context, s *session) error {
				if !s.ctrl.BeginEdit(id) {
					return fmt.Errorf("note %d not found", id)
				}
				draft := s.ctrl.State().Session
				t, c := draft.DraftTitle, draft.DraftContent
				if cmd.Flags().Changed("title") {
					t = title
				}
				if cmd.Flags().Changed("content") {
					c = content
				}
				s.ctrl.SetDraft(t, c)
				if !s.ctrl.Save(ctx) {
					return s.failure()
				}
				fmt.Fprintf(s.out, "saved note %d\n", id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "New content")
	return cmd
}

func newDeleteCmd(cfg client.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, cfg, func(ctx context.Context, s *session) error {
				if !s.ctrl.Delete(ctx, id) {
					return s.failure()
				}
				fmt.Fprintf(s.out, "deleted note %d\n", id)
				return nil
			})
		},
	}
}

func newAskCmd(cfg client.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about your notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			if strings.TrimSpace(question) == "" {
				return fmt.Errorf("question cannot be empty")
			}
			return withSession(cmd, cfg, func(ctx context.Context, s *session) error {
				ok := s.ctrl.Ask(ctx, question)
				s.printLastAnswer()
				if !ok {
					return s.failure()
				}
				return nil
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", s)
	}
	return id, nil
}
