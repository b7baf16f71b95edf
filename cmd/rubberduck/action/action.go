// Package actioncmder provides the explain, generate-test and refine
// commands: a terminal conversation about a code selection.
package actioncmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/rubberduck/pkg/config"
	"github.com/papercomputeco/rubberduck/pkg/conversation"
)

type actionCommander struct {
	kind        conversation.ActionKind
	lines       string
	instruction string

	model         string
	baseURL       string
	maxTokens     uint
	timeout       uint
	projectionDir string

	debug     bool
	configDir string
}

var gatewayFlags = []string{
	config.FlagModel,
	config.FlagBaseURL,
	config.FlagMaxTokens,
	config.FlagTimeout,
}

const explainLongDesc string = `Explain a code selection.

The explanation is rendered as markdown. Follow-up questions are read from
stdin until /exit or EOF.

Examples:
  rubberduck explain main.go
  rubberduck explain main.go --lines 10:24
  rubberduck explain main.go --lines 42`

const generateTestLongDesc string = `Generate a unit test for a code selection.

The test is written to a file in the projection directory and the file is
rewritten after every instruction read from stdin. Type /exit or send EOF
to finish.

Examples:
  rubberduck generate-test add.js
  rubberduck generate-test add.go --lines 3:12 --projection-dir ./tests`

const refineLongDesc string = `Rework a code selection following an instruction.

The refined code is written to a file in the projection directory and the
file is rewritten after every further instruction read from stdin.

Examples:
  rubberduck refine add.js --instruction "handle negative numbers"
  rubberduck refine main.go --lines 10:24 -i "extract a helper"`

func NewExplainCmd() *cobra.Command {
	return newActionCmd(conversation.ActionExplain, "explain <file>", "Explain a code selection", explainLongDesc)
}

func NewGenerateTestCmd() *cobra.Command {
	return newActionCmd(conversation.ActionGenerateTest, "generate-test <file>", "Generate a test for a code selection", generateTestLongDesc)
}

func NewRefineCmd() *cobra.Command {
	return newActionCmd(conversation.ActionRefine, "refine <file>", "Refine a code selection", refineLongDesc)
}

func newActionCmd(kind conversation.ActionKind, use, short, long string) *cobra.Command {
	cmder := &actionCommander{kind: kind}
	projects := kind != conversation.ActionExplain

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if kind == conversation.ActionRefine && strings.TrimSpace(cmder.instruction) == "" {
				return fmt.Errorf("--instruction is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&cmder.lines, "lines", "", "Selected lines as START:END, START: or LINE (default: whole file)")
	if kind == conversation.ActionRefine {
		cmd.Flags().StringVarP(&cmder.instruction, "instruction", "i", "", "How to change the selection")
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	config.AddUintFlag(cmd, config.Flags, config.FlagMaxTokens, &cmder.maxTokens)
	config.AddUintFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	if projects {
		config.AddStringFlag(cmd, config.Flags, config.FlagProjectionDir, &cmder.projectionDir)
	}

	return cmd
}
