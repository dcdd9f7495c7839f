package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"

	"github.com/broady/idlbind/cmd/idlbind/internal/check"
	"github.com/broady/idlbind/cmd/idlbind/internal/dump"
	"github.com/broady/idlbind/cmd/idlbind/internal/gen"
	"github.com/broady/idlbind/internal/logging"
)

type CLI struct {
	Verbose  bool `help:"Log debug output." short:"v"`
	JSONLogs bool `help:"Log as JSON lines." name:"json-logs"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate QuickJS, plugin API and Rust bindings."`
	Check   check.Cmd  `cmd:"" help:"Report generated files that are missing or out of date."`
	Dump    dump.Cmd   `cmd:"" help:"Print the analyzed declaration model."`
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("idlbind"),
		kong.Description("Compile IDL declaration files into native binding code."),
		kong.UsageOnError(),
	)

	log := logging.New(logging.Options{Verbose: cli.Verbose, JSON: cli.JSONLogs})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.BindTo(os.Stdout, (*io.Writer)(nil))
	kctx.Bind(log)
	if err := kctx.Run(); err != nil {
		for _, h := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "hint:", h)
		}
		kctx.FatalIfErrorf(err)
	}
}
