package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"legalchat-backend/internal/chatclient"
	"legalchat-backend/internal/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const chatHelp = `Commands:
  /new            start a new chat
  /clear          reset the current chat to the greeting
  /delete         delete the current chat
  /list           list your chats
  /switch N       open chat N from /list
  /docs           show documents behind the last answer
  /copy N [file]  write code block N of the last answer to stdout or a file
  /help           show this help
  /quit           exit`

func chatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat (the default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}
}

func runChat(cmd *cobra.Command, opts *rootOptions) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	titleCfg := a.cfg.Title
	ctrl := chatclient.NewController(chatclient.ControllerDeps{
		Backend:  a.backend,
		Answerer: chatclient.NewQueryClient(a.cfg.Query.URL, a.logger),
		Titles:   timeoutTitles{gen: chatclient.NewOpenAITitleGenerator(titleCfg), timeout: titleCfg.Timeout},
		Notifier: chatclient.NotifierFunc(func(level chatclient.Level, message string) {
			fmt.Fprintf(out, "[%s] %s\n", level, message)
		}),
		Logger: a.logger,
		TopK:   a.cfg.Query.TopK,
	})

	if err := ctrl.Bootstrap(ctx); err != nil {
		if errors.Is(err, chatclient.ErrNotAuthenticated) {
			_ = a.clearSession()
			return fmt.Errorf("not logged in; run `%s login` or `%s signup` first", appName, appName)
		}
		return err
	}
	// The server may have refreshed the cookie.
	if err := a.saveSession(); err != nil {
		a.logger.Warn("could not persist session", zap.Error(err))
	}

	r := &repl{ctrl: ctrl, out: out}
	if u := ctrl.User(); u != nil {
		fmt.Fprintf(out, "Logged in as %s %s. Type /help for commands.\n", u.FirstName, u.LastName)
	}
	r.printConversation()

	in := opts.input(cmd)
	for {
		fmt.Fprint(out, "> ")
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				break
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		if ctx.Err() != nil {
			break
		}
		if quit := r.handle(ctx, strings.TrimSpace(line)); quit {
			break
		}
	}

	ctrl.Wait()
	return nil
}

// timeoutTitles bounds each title request by the configured timeout.
type timeoutTitles struct {
	gen     chatclient.TitleGenerator
	timeout time.Duration
}

func (t timeoutTitles) GenerateTitle(ctx context.Context, userMessage, assistantReply string) (string, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return t.gen.GenerateTitle(ctx, userMessage, assistantReply)
}

// chatController is the part of *chatclient.Controller the REPL drives.
type chatController interface {
	Conversations() []chatclient.ConversationView
	Conversation(id uuid.UUID) (chatclient.ConversationView, bool)
	Selected() uuid.UUID
	Documents() []models.RetrievedDocument
	Select(ctx context.Context, id uuid.UUID) error
	Send(ctx context.Context, input string) (*chatclient.TurnResult, error)
	CreateNewChat(ctx context.Context) error
	ClearChat(ctx context.Context, id uuid.UUID) error
	DeleteChat(ctx context.Context, id uuid.UUID) error
}

type repl struct {
	ctrl chatController
	out  io.Writer
	// last holds the most recent answer, for /copy.
	last string
	// listed maps the positions last printed by /list to conversation ids.
	// It is reprinted whenever chats are added or removed.
	listed []uuid.UUID
}

// handle runs one input line. It reports whether the session should end.
func (r *repl) handle(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		r.send(ctx, line)
		return false
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(r.out, chatHelp)
	case "/new":
		if err := r.ctrl.CreateNewChat(ctx); err == nil {
			r.printConversation()
			r.list()
		}
	case "/clear":
		if id, ok := r.selection(); ok {
			if err := r.ctrl.ClearChat(ctx, id); err == nil {
				r.printConversation()
			}
		}
	case "/delete":
		if id, ok := r.selection(); ok {
			if err := r.ctrl.DeleteChat(ctx, id); err == nil {
				r.printConversation()
				r.list()
			}
		}
	case "/list":
		r.list()
	case "/switch":
		r.switchTo(ctx, fields[1:])
	case "/docs":
		r.docs()
	case "/copy":
		r.copy(fields[1:])
	default:
		fmt.Fprintf(r.out, "Unknown command %s. Type /help for commands.\n", fields[0])
	}
	return false
}

func (r *repl) selection() (uuid.UUID, bool) {
	id := r.ctrl.Selected()
	if id == uuid.Nil {
		fmt.Fprintln(r.out, "No chat selected. Use /new to start one.")
		return id, false
	}
	return id, true
}

func (r *repl) send(ctx context.Context, text string) {
	res, err := r.ctrl.Send(ctx, text)
	switch {
	case err == nil:
		r.last = res.AssistantMessage.Content
		r.printMessage(res.AssistantMessage)
	case errors.Is(err, chatclient.ErrNoConversation):
		fmt.Fprintln(r.out, "No chat selected. Use /new to start one.")
	case errors.Is(err, chatclient.ErrBusy):
		fmt.Fprintln(r.out, "Still waiting for the previous answer.")
	}
	// Other failures were already reported through the notifier.
}

func (r *repl) list() {
	convs := r.ctrl.Conversations()
	if len(convs) == 0 {
		fmt.Fprintln(r.out, "No chats yet. Use /new to start one.")
		return
	}
	selected := r.ctrl.Selected()
	r.listed = r.listed[:0]
	for i, c := range convs {
		marker := " "
		if c.ID == selected {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %2d. %s (%s)\n", marker, i+1, c.Title, c.CreatedAt.Local().Format("2006-01-02 15:04"))
		r.listed = append(r.listed, c.ID)
	}
}

func (r *repl) switchTo(ctx context.Context, args []string) {
	if len(r.listed) == 0 {
		r.list()
	}
	n, err := strconv.Atoi(strings.Join(args, ""))
	if err != nil || n < 1 || n > len(r.listed) {
		fmt.Fprintln(r.out, "Usage: /switch N (see /list)")
		return
	}
	if err := r.ctrl.Select(ctx, r.listed[n-1]); err == nil {
		r.printConversation()
	}
}

func (r *repl) docs() {
	docs := r.ctrl.Documents()
	if len(docs) == 0 {
		fmt.Fprintln(r.out, "No documents for the last answer.")
		return
	}
	for i, d := range docs {
		fmt.Fprintf(r.out, "[%d] %s\n%s\n\n", i+1, d.Header, d.Content)
	}
}

func (r *repl) copy(args []string) {
	blocks := chatclient.CodeBlocks(r.last)
	if len(args) == 0 {
		fmt.Fprintln(r.out, "Usage: /copy N [file]")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(blocks) {
		fmt.Fprintf(r.out, "The last answer has %d code block(s).\n", len(blocks))
		return
	}
	code := strings.Trim(blocks[n-1], "\n")
	if len(args) < 2 {
		fmt.Fprintln(r.out, code)
		return
	}
	if err := os.WriteFile(args[1], []byte(code+"\n"), 0o644); err != nil {
		fmt.Fprintf(r.out, "[error] %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "Copied to %s\n", args[1])
}

func (r *repl) printConversation() {
	id := r.ctrl.Selected()
	conv, ok := r.ctrl.Conversation(id)
	if !ok {
		fmt.Fprintln(r.out, "No chat selected. Use /new to start one.")
		return
	}
	fmt.Fprintf(r.out, "== %s ==\n", conv.Title)
	r.last = ""
	for _, m := range conv.Messages {
		r.printMessage(m)
		if m.SenderRole == models.SenderRoleChatbot {
			r.last = m.Content
		}
	}
}

func (r *repl) printMessage(m chatclient.ViewMessage) {
	who := "You"
	if m.SenderRole == models.SenderRoleChatbot {
		who = "Assistant"
	}
	fmt.Fprintf(r.out, "%s:\n", who)
	code := 0
	for _, seg := range chatclient.Segments(m.Content) {
		if seg.Kind == chatclient.SegmentCode {
			code++
			fmt.Fprintf(r.out, "--- code [%d] ---\n%s\n--- end ---\n", code, strings.Trim(seg.Content, "\n"))
			continue
		}
		fmt.Fprint(r.out, seg.Content)
	}
	fmt.Fprintln(r.out)
}
