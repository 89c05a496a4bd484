// Command gren is the command-line driver for the Dependency Resolver,
// Project Builder, and Incremental Compile Engine: it owns flag parsing,
// gren.json/.gren cache I/O, and error rendering, wiring the stdlib-only
// CLI surface in front of the internal/* packages that do the real work.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
)

// command is the per-subcommand contract, modeled line for line on
// golang-dep's cmd/dep command table.
type command interface {
	Name() string           // "make"
	Args() string            // "[<module>.gren...]"
	ShortHelp() string       // one-line summary
	LongHelp() string        // full usage text
	Register(*flag.FlagSet)  // command-specific flags
	Hidden() bool            // omit from top-level help
	Run(*Ctx, []string) error
}

func main() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to get working directory:", err)
		os.Exit(1)
	}
	c := &Config{
		Args:       os.Args,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		WorkingDir: wd,
	}
	os.Exit(c.Run())
}

// Config specifies a full configuration for one gren invocation.
type Config struct {
	WorkingDir     string
	Args           []string
	Stdout, Stderr *os.File
}

// Run executes a configuration and returns an exit code.
func (c *Config) Run() (exitCode int) {
	commands := []command{
		&initCommand{},
		&makeCommand{},
		&installCommand{},
		&replCommand{},
		&diffCommand{},
		&bumpCommand{},
		&publishCommand{},
	}

	outLogger := log.New(c.Stdout, "", 0)
	errLogger := log.New(c.Stderr, "", 0)

	usage := func() {
		errLogger.Println("gren is a compiler and project tool for Gren")
		errLogger.Println()
		errLogger.Println("Usage: gren <command>")
		errLogger.Println()
		errLogger.Println("Commands:")
		errLogger.Println()
		w := tabwriter.NewWriter(c.Stderr, 0, 4, 2, ' ', 0)
		for _, cmd := range commands {
			if !cmd.Hidden() {
				fmt.Fprintf(w, "\t%s\t%s\n", cmd.Name(), cmd.ShortHelp())
			}
		}
		w.Flush()
		errLogger.Println()
		errLogger.Println(`Use "gren help <command>" for more information about a command.`)
	}

	cmdName, printCommandHelp, exit := parseArgs(c.Args)
	if exit {
		usage()
		return 1
	}

	for _, cmd := range commands {
		if cmd.Name() != cmdName {
			continue
		}

		fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
		fs.SetOutput(c.Stderr)
		verbose := fs.Bool("v", false, "enable verbose logging")
		cmd.Register(fs)
		resetUsage(errLogger, fs, cmdName, cmd.Args(), cmd.LongHelp())

		if printCommandHelp {
			fs.Usage()
			return 1
		}
		if err := fs.Parse(c.Args[2:]); err != nil {
			return 1
		}

		ctx := &Ctx{
			WorkingDir: c.WorkingDir,
			Loggers:    &Loggers{Out: outLogger, Err: errLogger, Verbose: *verbose},
			Stdout:     c.Stdout,
		}

		if err := cmd.Run(ctx, fs.Args()); err != nil {
			errLogger.Println(ctx.renderErr(err))
			return 1
		}
		return 0
	}

	errLogger.Printf("gren: %s: no such command\n", cmdName)
	usage()
	return 1
}

func resetUsage(logger *log.Logger, fs *flag.FlagSet, name, args, longHelp string) {
	var (
		hasFlags   bool
		flagBlock  bytes.Buffer
		flagWriter = tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)
	)
	fs.VisitAll(func(f *flag.Flag) {
		hasFlags = true
		defValue := f.DefValue
		if defValue == "" {
			defValue = "<none>"
		}
		fmt.Fprintf(flagWriter, "\t-%s\t%s (default: %s)\n", f.Name, f.Usage, defValue)
	})
	flagWriter.Flush()
	fs.Usage = func() {
		logger.Printf("Usage: gren %s %s\n", name, args)
		logger.Println()
		logger.Println(strings.TrimSpace(longHelp))
		logger.Println()
		if hasFlags {
			logger.Println("Flags:")
			logger.Println()
			logger.Println(flagBlock.String())
		}
	}
}

// parseArgs determines the subcommand name and whether help was asked for.
func parseArgs(args []string) (cmdName string, printCmdUsage bool, exit bool) {
	isHelpArg := func() bool {
		return strings.Contains(strings.ToLower(args[1]), "help") || strings.ToLower(args[1]) == "-h"
	}

	switch len(args) {
	case 0, 1:
		exit = true
	case 2:
		if isHelpArg() {
			exit = true
		}
		cmdName = args[1]
	default:
		if isHelpArg() {
			cmdName = args[2]
			printCmdUsage = true
		} else {
			cmdName = args[1]
		}
	}
	return cmdName, printCmdUsage, exit
}
