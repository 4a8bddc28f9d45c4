package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/quillmind/quillmind/client"
)

var (
	errorColor  = color.New(color.FgRed)
	answerColor = color.New(color.FgCyan)
)

const chatHelp = `commands:
  :notes                      list notes
  :new <title> | <content>    create and save a note
  :edit <id> <title> | <content>
  :del <id>                   delete a note
  :quit                       leave
anything else is asked as a question`

func newChatCmd(cfg client.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive notes and chat session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, cfg, func(ctx context.Context, s *session) error {
				fmt.Fprintln(s.out, chatHelp)
				sc := bufio.NewScanner(cmd.InOrStdin())
				for {
					fmt.Fprint(s.out, "> ")
					if !sc.Scan() {
						return sc.Err()
					}
					if quit := s.dispatch(ctx, sc.Text()); quit {
						return nil
					}
					if err := s.failure(); err != nil {
						errorColor.Fprintln(s.out, "error:", err)
					}
				}
			})
		},
	}
}

// dispatch runs one REPL line and reports whether the session should end.
func (s *session) dispatch(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "":
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(s.out, chatHelp)
	case ":notes":
		s.printNotes()
	case ":new":
		title, content := splitDraft(rest)
		s.ctrl.CreateNote()
		s.ctrl.SetDraft(title, content)
		if s.ctrl.Save(ctx) {
			s.printNotes()
		}
	case ":edit":
		idStr, draft, _ := strings.Cut(rest, " ")
		id, err := parseID(idStr)
		if err != nil {
			errorColor.Fprintln(s.out, "error:", err)
			break
		}
		if !s.ctrl.BeginEdit(id) {
			errorColor.Fprintf(s.out, "error: note %d not found\n", id)
			break
		}
		title, content := splitDraft(draft)
		s.ctrl.SetDraft(title, content)
		s.ctrl.Save(ctx)
	case ":del":
		id, err := parseID(rest)
		if err != nil {
			errorColor.Fprintln(s.out, "error:", err)
			break
		}
		s.ctrl.Delete(ctx, id)
	default:
		s.ctrl.Ask(ctx, line)
		s.printLastAnswer()
	}
	return false
}

func splitDraft(s string) (title, content string) {
	title, content, _ = strings.Cut(s, "|")
	return strings.TrimSpace(title), strings.TrimSpace(content)
}
