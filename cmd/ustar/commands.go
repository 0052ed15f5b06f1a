package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	. "github.com/warpfork/go-errcat"

	"github.com/polydawn/ustar"
	"github.com/polydawn/ustar/archive"
	"github.com/polydawn/ustar/caps"
	"github.com/polydawn/ustar/config"
	"github.com/polydawn/ustar/filters"
	"github.com/polydawn/ustar/fingerprint"
	"github.com/polydawn/ustar/fs"
	"github.com/polydawn/ustar/hostio"
	"github.com/polydawn/ustar/lib/alloc"
)

// Every archive the command touches draws from one pool.
var blobs = alloc.NewPool()

func loadArchive(path string, logger *zerolog.Logger) (*archive.Archive, error) {
	buf, err := hostio.Load(path)
	if err != nil {
		return nil, err
	}
	a := archive.Parse(buf, archive.WithAllocator(blobs), archive.WithLogger(logger))
	if a.Status() != archive.StatusOk {
		err := a.Err()
		a.Close()
		if ustar.IsParseFailure(err) {
			return nil, Errorf(Category(err), "%s is not a readable ustar archive: %s", path, err)
		}
		return nil, Errorf(Category(err), "%s: %s", path, err)
	}
	return a, nil
}

// storeArchive serializes a to path and reports its fingerprint.
func storeArchive(a *archive.Archive, path string) (Result, error) {
	buf, err := a.Serialize()
	if err != nil {
		return Result{}, err
	}
	defer blobs.Release(buf)
	if err := hostio.Write(path, buf); err != nil {
		return Result{}, err
	}
	return fingerprintResult(a)
}

func fingerprintResult(a *archive.Archive) (Result, error) {
	d, err := fingerprint.Archive(a)
	if err != nil {
		return Result{}, err
	}
	return Result{Fingerprint: d.String()}, nil
}

func executeList(ctx context.Context, cli baseCLI, logger *zerolog.Logger) (_ Result, err error) {
	defer RequireErrorHasCategory(&err, ustar.ErrorCategory(""))
	a, err := loadArchive(cli.ListCLI.Archive, logger)
	if err != nil {
		return Result{}, err
	}
	defer a.Close()
	var result Result
	a.Walk(func(path string, e *archive.Entry) error {
		result.Entries = append(result.Entries, listEntry(path, e))
		return nil
	})
	return result, nil
}

func executeRewrite(ctx context.Context, cli baseCLI, logger *zerolog.Logger) (_ Result, err error) {
	defer RequireErrorHasCategory(&err, ustar.ErrorCategory(""))
	a, err := loadArchive(cli.RewriteCLI.In, logger)
	if err != nil {
		return Result{}, err
	}
	defer a.Close()
	return storeArchive(a, cli.RewriteCLI.Out)
}

func executeAdd(ctx context.Context, cli baseCLI, logger *zerolog.Logger) (_ Result, err error) {
	defer RequireErrorHasCategory(&err, ustar.ErrorCategory(""))
	defaults, err := config.GetDefaultFilters()
	if err != nil {
		return Result{}, err
	}
	f, err := filters.Parse(cli.AddCLI.Filters, defaults)
	if err != nil {
		return Result{}, err
	}

	a, err := loadArchive(cli.AddCLI.Archive, logger)
	if err != nil {
		if _, statErr := os.Stat(cli.AddCLI.Archive); !cli.AddCLI.Create || !os.IsNotExist(statErr) {
			return Result{}, err
		}
		a = archive.New(archive.WithAllocator(blobs), archive.WithLogger(logger))
	}
	defer a.Close()

	opts := hostio.ScanOptions{Filters: f, Log: logger}
	for _, p := range cli.AddCLI.Paths {
		if ctx.Err() != nil {
			return Result{}, Errorf(ustar.ErrIO, "interrupted before adding %q", p)
		}
		if err := hostio.Scan(a, p, filepath.Base(filepath.Clean(p)), opts); err != nil {
			return Result{}, err
		}
	}
	return storeArchive(a, cli.AddCLI.Archive)
}

func executeRemove(ctx context.Context, cli baseCLI, logger *zerolog.Logger) (_ Result, err error) {
	defer RequireErrorHasCategory(&err, ustar.ErrorCategory(""))
	a, err := loadArchive(cli.RemoveCLI.Archive, logger)
	if err != nil {
		return Result{}, err
	}
	defer a.Close()
	for _, name := range cli.RemoveCLI.Names {
		holder, e := a.Lookup(name)
		if e == nil {
			return Result{}, Errorf(ustar.ErrUsage, "no entry named %q in %s", name, cli.RemoveCLI.Archive)
		}
		if removed, ok := holder.Remove(e.Handle()); ok {
			holder.Release(removed)
		}
	}
	return storeArchive(a, cli.RemoveCLI.Archive)
}

func executeExtract(ctx context.Context, cli baseCLI, logger *zerolog.Logger) (_ Result, err error) {
	defer RequireErrorHasCategory(&err, ustar.ErrorCategory(""))
	if cli.ExtractCLI.KeepOwner {
		fulcrum, err := caps.Scan()
		if err != nil {
			return Result{}, err
		}
		if !fulcrum.CanManageOwnership() {
			return Result{}, Errorf(ustar.ErrUsage, "--keep-owner needs CAP_CHOWN and CAP_FOWNER (or root)")
		}
		if cli.ExtractCLI.Sticky && !fulcrum.CanKeepSetid() {
			return Result{}, Errorf(ustar.ErrUsage, "--keep-owner with --sticky needs CAP_FSETID (or root)")
		}
	}
	dest, err := fs.ParseAbsolutePath(cli.ExtractCLI.Dest)
	if err != nil {
		return Result{}, err
	}
	a, err := loadArchive(cli.ExtractCLI.Archive, logger)
	if err != nil {
		return Result{}, err
	}
	defer a.Close()
	if err := hostio.Extract(a, dest, hostio.PlaceOptions{
		KeepOwner: cli.ExtractCLI.KeepOwner,
		KeepSetid: cli.ExtractCLI.Sticky,
		Log:       logger,
	}); err != nil {
		return Result{}, err
	}
	return fingerprintResult(a)
}

func executeFingerprint(ctx context.Context, cli baseCLI, logger *zerolog.Logger) (_ Result, err error) {
	defer RequireErrorHasCategory(&err, ustar.ErrorCategory(""))
	a, err := loadArchive(cli.FingerprintCLI.Archive, logger)
	if err != nil {
		return Result{}, err
	}
	defer a.Close()
	return fingerprintResult(a)
}
