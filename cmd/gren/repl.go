package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/gren-lang/compiler/internal/artifact"
	"github.com/gren-lang/compiler/internal/external"
	"github.com/gren-lang/compiler/internal/modname"
)

const replShortHelp = `A read-eval-print loop`
const replLongHelp = `
Reads one module fixture per blank-line-terminated block from stdin,
compiles it, and hands the generated JavaScript to --interpreter for
evaluation. Interactive debugging of a running program is out of
scope; this is a thin loop around the same compile pipeline make uses.
`

func (cmd *replCommand) Name() string      { return "repl" }
func (cmd *replCommand) Args() string      { return "" }
func (cmd *replCommand) ShortHelp() string { return replShortHelp }
func (cmd *replCommand) LongHelp() string  { return replLongHelp }
func (cmd *replCommand) Hidden() bool      { return false }

func (cmd *replCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.interpreter, "interpreter", "node", "path to the JavaScript interpreter used to evaluate each entry")
	fs.BoolVar(&cmd.noColors, "no-colors", false, "disable ANSI coloring of the prompt and errors")
}

type replCommand struct {
	interpreter string
	noColors    bool
}

func (cmd *replCommand) Run(ctx *Ctx, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("repl takes no arguments")
	}

	prompt := "gren> "
	if !cmd.noColors {
		prompt = "\x1b[36mgren>\x1b[0m "
	}

	scanner := bufio.NewScanner(os.Stdin)
	var block []string
	for {
		fmt.Fprint(ctx.Loggers.Out.Writer(), prompt)
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if len(block) > 0 {
				cmd.evalBlock(ctx, strings.Join(block, "\n"))
				block = nil
			}
			continue
		}
		block = append(block, line)
	}
	if len(block) > 0 {
		cmd.evalBlock(ctx, strings.Join(block, "\n"))
	}
	return scanner.Err()
}

func (cmd *replCommand) evalBlock(ctx *Ctx, src string) {
	toolchain := external.Reference{}
	parsed, err := toolchain.Parse("<repl>", []byte(src))
	if err != nil {
		cmd.report(ctx, err)
		return
	}

	iface, graph, err := toolchain.Check(parsed, external.VisibleInterfaces{})
	if err != nil {
		cmd.report(ctx, err)
		return
	}

	builtGraph, err := toolchain.Link(map[modname.Raw]external.LocalGraph{parsed.Name: graph})
	if err != nil {
		cmd.report(ctx, err)
		return
	}

	js, err := toolchain.Emit(builtGraph, []modname.Raw{parsed.Name}, false)
	if err != nil {
		cmd.report(ctx, err)
		return
	}

	cmd.printInterface(ctx, iface)
	cmd.evaluate(ctx, js)
}

func (cmd *replCommand) printInterface(ctx *Ctx, iface artifact.Interface) {
	for _, v := range iface.Values {
		ctx.Loggers.Out.Printf("%s : %s\n", v.Name, v.Canonical)
	}
}

func (cmd *replCommand) evaluate(ctx *Ctx, js []byte) {
	if cmd.interpreter == "" {
		return
	}
	command := exec.CommandContext(context.Background(), cmd.interpreter)
	command.Stdin = strings.NewReader(string(js))
	out, err := command.CombinedOutput()
	if err != nil {
		ctx.Loggers.Err.Printf("interpreter error: %v\n", err)
		return
	}
	ctx.Loggers.Out.Print(string(out))
}

func (cmd *replCommand) report(ctx *Ctx, err error) {
	ctx.Loggers.Err.Println(ctx.renderErr(err))
}
