package actioncmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/rubberduck/cmd/rubberduck/setup"
	"github.com/papercomputeco/rubberduck/pkg/cliui"
	"github.com/papercomputeco/rubberduck/pkg/config"
	"github.com/papercomputeco/rubberduck/pkg/conversation"
	"github.com/papercomputeco/rubberduck/pkg/logger"
	"github.com/papercomputeco/rubberduck/pkg/panel"
	"github.com/papercomputeco/rubberduck/pkg/projection"
	"github.com/papercomputeco/rubberduck/pkg/projection/filehost"
	"github.com/papercomputeco/rubberduck/pkg/selection"
)

const exitCommand = "/exit"

// session is one terminal conversation.
type session struct {
	out      io.Writer
	in       *bufio.Scanner
	panel    *panel.Panel
	conv     *conversation.Conversation
	markdown bool

	mu       sync.Mutex
	path     string
	failures []string
}

func (c *actionCommander) run(cmd *cobra.Command, filename string) error {
	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}
	keys := append([]string{}, gatewayFlags...)
	if c.kind != conversation.ActionExplain {
		keys = append(keys, config.FlagProjectionDir)
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, keys)
	cfg := config.FromViper(v)

	log := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithPrefix(cmd.Name()),
		logger.WithWriter(cmd.ErrOrStderr()),
	)

	r, err := selection.ParseRange(c.lines)
	if err != nil {
		return err
	}
	sel, err := selection.Read(filename, r)
	if err != nil {
		return err
	}

	gw, err := setup.NewGateway(cfg, c.configDir, log)
	if err != nil {
		return err
	}

	s := &session{
		out:      cmd.OutOrStdout(),
		in:       bufio.NewScanner(cmd.InOrStdin()),
		markdown: c.kind == conversation.ActionExplain,
	}

	var host projection.Host
	if c.kind != conversation.ActionExplain {
		dir, err := setup.ResolveProjectionDir(cfg.Projection.Dir, c.configDir)
		if err != nil {
			return err
		}
		host, err = filehost.New(filehost.Config{
			Dir:    dir,
			OnOpen: s.onOpen,
			Logger: log,
		})
		if err != nil {
			return err
		}
	}

	s.panel, err = panel.New(panel.Config{
		Strategies: setup.NewStrategyFactory(gw, host, log),
		Logger:     log,
	})
	if err != nil {
		return err
	}
	unsubscribe := s.panel.Subscribe(s.onPanelEvent)
	defer unsubscribe()

	log.Debug("starting conversation",
		"action", string(c.kind),
		"filename", sel.Filename,
		"lines", fmt.Sprintf("%d:%d", sel.StartLine, sel.EndLine),
		"model", gw.Model(),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s.conv, err = s.panel.Create(ctx, conversation.Trigger{
		Type:        c.kind,
		Selection:   sel,
		Instruction: c.instruction,
	})
	if err != nil {
		return err
	}

	return s.loop(ctx, log)
}

// loop alternates between waiting for the answer and reading the next user
// message until /exit, EOF or a failed answer.
func (s *session) loop(ctx context.Context, log *slog.Logger) error {
	fmt.Fprintln(s.out)

	for {
		state := s.conv.State()
		err := cliui.Step(s.out, state.BotAction, func() error {
			s.panel.Wait()
			if st := s.conv.State(); st.Type == conversation.StateError {
				return errors.New(st.ErrorMessage)
			}
			return nil
		})
		s.flushFailures()

		if err != nil {
			fmt.Fprintf(s.out, "\n  %s\n\n", cliui.ErrorLine(err.Error()))
			return err
		}

		s.printAnswer()

		text, ok := s.readMessage(s.conv.State().ResponsePlaceholder)
		if !ok {
			break
		}

		accepted, err := s.panel.Submit(ctx, s.conv.ID(), text)
		if err != nil {
			return err
		}
		if !accepted {
			log.Debug("message not accepted", "state", string(s.conv.State().Type))
		}
		fmt.Fprintln(s.out)
	}

	if err := s.in.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(s.out)
	return nil
}

// readMessage prompts until a non-blank line arrives. It returns false on
// /exit or EOF.
func (s *session) readMessage(placeholder string) (string, bool) {
	for {
		fmt.Fprint(s.out, "\n"+cliui.Prompt(placeholder))
		if !s.in.Scan() {
			return "", false
		}

		input := strings.TrimSpace(s.in.Text())
		if input == "" {
			continue
		}
		if input == exitCommand {
			return "", false
		}
		return input, true
	}
}

func (s *session) printAnswer() {
	messages := s.conv.Messages()
	if len(messages) == 0 {
		return
	}

	last := messages[len(messages)-1]
	fmt.Fprintf(s.out, "\n%s\n", cliui.BotLine(last.Content, s.markdown))

	s.mu.Lock()
	path := s.path
	s.mu.Unlock()
	if path != "" {
		fmt.Fprintf(s.out, "  %s %s\n", cliui.SuccessMark, cliui.DimStyle.Render(path))
	}
}

func (s *session) onOpen(path string, _ projection.Placement) {
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
}

// onPanelEvent runs on the conversation goroutine and only records.
func (s *session) onPanelEvent(ev panel.Event) {
	if ev.Kind != panel.EventProjectionFailed {
		return
	}
	s.mu.Lock()
	s.failures = append(s.failures, ev.Error)
	s.mu.Unlock()
}

func (s *session) flushFailures() {
	s.mu.Lock()
	failures := s.failures
	s.failures = nil
	s.mu.Unlock()

	for _, f := range failures {
		fmt.Fprintf(s.out, "  %s %s\n", cliui.WarnStyle.Render("!"), "could not update document: "+f)
	}
}
