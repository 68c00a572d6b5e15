package cli

import (
	"errors"
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Status     *StatusCommand
	Intervals  *IntervalsCommand
	Set        *SetCommand
	Record     *RecordCommand
	Prune      *PruneCommand
	Clear      *ClearCommand
	Daemon     *DaemonCommand
	ClientSet  *ClientSetCommand
	ClientList *ClientListCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "statkeep"
	parser.LongDescription = "DNS query statistics with configurable retention and ignored domains."

	d := deps{globals: &globals, version: version}
	cmds := &commands{
		Status:     &StatusCommand{deps: d},
		Intervals:  &IntervalsCommand{deps: d},
		Set:        &SetCommand{deps: d},
		Record:     &RecordCommand{deps: d},
		Prune:      &PruneCommand{deps: d},
		Clear:      &ClearCommand{deps: d},
		Daemon:     &DaemonCommand{deps: d},
		ClientSet:  &ClientSetCommand{deps: d},
		ClientList: &ClientListCommand{deps: d},
	}

	parser.AddCommand("status", "Show settings and statistics", "Show statistics settings, collected query counts and top domains and clients.", cmds.Status)
	parser.AddCommand("intervals", "List retention choices", "List the retention presets and the custom retention range.", cmds.Intervals)
	parser.AddCommand("set", "Change statistics settings", "Enable or disable collection, choose the retention period and edit the ignored domains.", cmds.Set)
	parser.AddCommand("record", "Record a DNS query", "Record one DNS query unless collection is disabled or the domain is ignored.", cmds.Record)
	parser.AddCommand("prune", "Apply retention pruning", "Remove queries older than the retention period.", cmds.Prune)
	parser.AddCommand("clear", "Delete ALL statistics", "Delete all collected statistics. Destructive operation with safety prompt.", cmds.Clear)
	parser.AddCommand("daemon", "Prune on a schedule", "Run retention pruning on the configured cron schedule until interrupted.", cmds.Daemon)

	client, _ := parser.AddCommand("client", "Per-client upstream DNS", "Show and change the upstream DNS servers and cache of persistent clients.", &ClientCommand{})
	client.AddCommand("set", "Change a client's upstreams", "Set the upstream DNS servers and upstream cache of one client.", cmds.ClientSet)
	client.AddCommand("list", "List client upstreams", "List the configured clients with their upstream DNS settings.", cmds.ClientList)

	return parser, &globals, cmds
}

// Run is the main entry point for the statkeep CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// go-flags requires a subcommand, but --version is valid without one.
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("statkeep %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	var flagsErr *goflags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
		return nil
	}
	return err
}
