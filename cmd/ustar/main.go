package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	. "github.com/warpfork/go-errcat"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/polydawn/ustar"
	"github.com/polydawn/ustar/config"
	"github.com/polydawn/ustar/filters"
	"github.com/polydawn/ustar/log"
)

/*
	Output serialization formats
*/
const (
	FmtJson = "json"
	FmtDumb = "dumb"
)

type baseCLI struct {
	Format   string // Output format, json or dumb
	LogLevel string // Minimum level of log events written to stderr
	ListCLI  struct {
		Archive string
	}
	RewriteCLI struct {
		In  string
		Out string
	}
	AddCLI struct {
		Archive string
		Paths   []string
		Filters filters.Spec
		Create  bool
	}
	RemoveCLI struct {
		Archive string
		Names   []string
	}
	ExtractCLI struct {
		Archive   string
		Dest      string
		KeepOwner bool
		Sticky    bool
	}
	FingerprintCLI struct {
		Archive string
	}
}

func configureAdd(cli *baseCLI, appAdd *kingpin.CmdClause) {
	appAdd.Arg("archive", "Archive file to add to").
		Required().
		StringVar(&cli.AddCLI.Archive)
	appAdd.Arg("path", "Host files or directories to add").
		Required().
		StringsVar(&cli.AddCLI.Paths)
	appAdd.Flag("create", "Start a new archive if the archive file doesn't exist").
		BoolVar(&cli.AddCLI.Create)

	// Filter flags
	appAdd.Flag("uid", "Set UID filter [keep, <int>]").
		StringVar(&cli.AddCLI.Filters.Uid)
	appAdd.Flag("gid", "Set GID filter [keep, <int>]").
		StringVar(&cli.AddCLI.Filters.Gid)
	appAdd.Flag("mtime", "Set mtime filter [keep, <@UNIX>, <RFC3339>]. Will be set to a date if not specified.").
		StringVar(&cli.AddCLI.Filters.Mtime)
	appAdd.Flag("sticky", "Keep setuid, setgid, and sticky bits").
		BoolVar(&cli.AddCLI.Filters.Sticky)
}

func configureExtract(cli *baseCLI, appExtract *kingpin.CmdClause) {
	appExtract.Arg("archive", "Archive file to extract").
		Required().
		StringVar(&cli.ExtractCLI.Archive)
	appExtract.Arg("dest", "Directory to extract into").
		Required().
		StringVar(&cli.ExtractCLI.Dest)
	appExtract.Flag("keep-owner", "Chown files to the uid and gid in the archive (needs privileges)").
		BoolVar(&cli.ExtractCLI.KeepOwner)
	appExtract.Flag("sticky", "Keep setuid, setgid, and sticky bits").
		BoolVar(&cli.ExtractCLI.Sticky)
}

/*
	Blocks until a sigint is received, then calls cancel.
*/
func CancelOnInterrupt(ctx context.Context, cancel context.CancelFunc) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt)
	defer signal.Stop(signalChan)
	select {
	case <-signalChan:
		cancel()
	case <-ctx.Done():
	}
}

func main() {
	ctx := context.Background()
	exitCode := Main(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	os.Exit(int(exitCode))
}

func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) ustar.ExitCode {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go CancelOnInterrupt(ctx, cancel)

	cli := baseCLI{}

	app := kingpin.New("ustar", "Read, edit, and write ustar archives")
	app.HelpFlag.Short('h')

	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)

	app.Flag("format", "Output format").
		Default(config.GetFormat()).
		EnumVar(&cli.Format, FmtJson, FmtDumb)
	app.Flag("log-level", "Log level [debug, info, warn, error]").
		Default(config.GetLogLevel()).
		StringVar(&cli.LogLevel)

	appList := app.Command("list", "list the entries of an archive")
	appList.Arg("archive", "Archive file").
		Required().
		StringVar(&cli.ListCLI.Archive)

	appRewrite := app.Command("rewrite", "parse an archive and write it back out")
	appRewrite.Arg("in", "Archive file to read").
		Required().
		StringVar(&cli.RewriteCLI.In)
	appRewrite.Arg("out", "Archive file to write").
		Required().
		StringVar(&cli.RewriteCLI.Out)

	appAdd := app.Command("add", "add host files to an archive")
	configureAdd(&cli, appAdd)

	appRemove := app.Command("remove", "remove entries from an archive")
	appRemove.Arg("archive", "Archive file").
		Required().
		StringVar(&cli.RemoveCLI.Archive)
	appRemove.Arg("name", "Entry paths to remove").
		Required().
		StringsVar(&cli.RemoveCLI.Names)

	appExtract := app.Command("extract", "place the files and directories of an archive on the host")
	configureExtract(&cli, appExtract)

	appFingerprint := app.Command("fingerprint", "print the content digest of an archive")
	appFingerprint.Arg("archive", "Archive file").
		Required().
		StringVar(&cli.FingerprintCLI.Archive)

	var terminated bool
	app.Terminate(func(status int) {
		terminated = true
	})
	cmd, err := app.Parse(args[1:])
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ustar.ExitUsage
	}
	if terminated {
		// help or version was printed.
		return ustar.ExitUsage
	}

	logger := log.New(stderr, cli.LogLevel, cli.Format == FmtDumb)
	var result Result
	switch cmd {
	case appList.FullCommand():
		result, err = executeList(ctx, cli, &logger)
	case appRewrite.FullCommand():
		result, err = executeRewrite(ctx, cli, &logger)
	case appAdd.FullCommand():
		result, err = executeAdd(ctx, cli, &logger)
	case appRemove.FullCommand():
		result, err = executeRemove(ctx, cli, &logger)
	case appExtract.FullCommand():
		result, err = executeExtract(ctx, cli, &logger)
	case appFingerprint.FullCommand():
		result, err = executeFingerprint(ctx, cli, &logger)
	default:
		err = Errorf(ustar.ErrUsage, "unknown command %q", cmd)
	}
	SerializeResult(cli.Format, result, err, stdout, stderr)
	return ustar.ExitCodeForError(err)
}
