// Command rbh-fsevents translates a filesystem-event source into a
// destination-bound fsevent stream, per spec.md §6:
//
//	rbh-fsevents [-h|--help] [-r|--raw] [-e|--enrich MOUNTPOINT] SOURCE DESTINATION
//
// Grounded on original_source/src/main.c's argument handling (SOURCE in
// {-, a path, an MDT name} and the -r/-e flag pair) and on rclone's own
// cobra root-command convention (a single Use line, RunE returning an
// error the entry point classifies into an exit code) rather than
// rclone's full multi-verb command tree, since this binary has exactly
// one verb.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cea-hpc/rbh-fsevents/applog"
	"github.com/cea-hpc/rbh-fsevents/dedup"
	"github.com/cea-hpc/rbh-fsevents/enrich"
	"github.com/cea-hpc/rbh-fsevents/metrics"
	"github.com/cea-hpc/rbh-fsevents/pipeline"
	"github.com/cea-hpc/rbh-fsevents/sink"
	"github.com/cea-hpc/rbh-fsevents/source"
)

// exitUsage is sysexits.h's EX_USAGE, spec.md §6's usage-error exit code.
const exitUsage = 64

var (
	raw         bool
	enrichSpec  string
	metricsAddr string
	ringEvents  int
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rbh-fsevents SOURCE DESTINATION",
		Short:         "Translate filesystem change events from SOURCE to DESTINATION",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], args[1])
		},
	}
	cmd.Flags().BoolVarP(&raw, "raw", "r", false, "do not enrich events, even if -e is given")
	cmd.Flags().StringVarP(&enrichSpec, "enrich", "e", "", "enrich events by opening objects under MOUNTPOINT[:posix|:lustre]")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve /metrics and /healthz on (disabled if empty)")
	cmd.Flags().IntVar(&ringEvents, "ring-events", 1024, "approximate number of events the deduplicator's ring buffer holds before cutting a batch")
	return cmd
}

// exitCode classifies err into spec.md §6's exit-code taxonomy: 64 for a
// usage error, 1 for anything else, 0 is cobra's own "no error" path.
func exitCode(err error) int {
	if errors.Is(err, enrich.ErrUsage) || errors.Is(err, sink.ErrUsage) {
		fmt.Fprintf(os.Stderr, "rbh-fsevents: %v\n", err)
		return exitUsage
	}
	fmt.Fprintf(os.Stderr, "rbh-fsevents: %v\n", err)
	return 1
}

func run(ctx context.Context, sourceArg, destArg string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src, err := openSource(sourceArg)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer src.Close()

	var enrichers []*enrich.Enricher
	if !raw && enrichSpec != "" {
		enricher, err := openEnricher(enrichSpec)
		if err != nil {
			return fmt.Errorf("opening enricher: %w", err)
		}
		defer enricher.Close()
		enrichers = append(enrichers, enricher)
	}

	dst, err := openSink(destArg)
	if err != nil {
		return fmt.Errorf("opening destination: %w", err)
	}
	defer dst.Close()

	dd := dedup.New(src, ringEvents)
	defer dd.Close()

	if metricsAddr != "" {
		srv, err := metrics.NewServer(metricsAddr, dd)
		if err != nil {
			return fmt.Errorf("starting metrics server: %w", err)
		}
		go func() {
			if err := srv.Serve(); err != nil {
				applog.Errorf(nil, "metrics server: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	return pipeline.Run(ctx, src, dd, enrichers, dst)
}

// mdtNamePattern matches spec.md §6's MDT name grammar: <fsname>-MDT<hex>.
var mdtNamePattern = regexp.MustCompile(`^[^-]+-MDT[0-9a-fA-F]+$`)

// openSource maps the SOURCE argument to a concrete source.Source
// (spec.md §6): "-" is stdin, "example" is the synthetic self-test
// source, an MDT-shaped name opens the Lustre changelog, anything else
// is a record file path.
func openSource(arg string) (source.Source, error) {
	switch {
	case arg == "-":
		return source.NewStdin(), nil
	case arg == "example":
		return source.NewExample(), nil
	case mdtNamePattern.MatchString(arg):
		return source.NewLustre(arg)
	default:
		return source.NewFile(arg)
	}
}

// openSink maps the DESTINATION argument (spec.md §6) to a concrete
// sink.Sink via sink.ParseDestination.
func openSink(arg string) (sink.Sink, error) {
	kind, u, err := sink.ParseDestination(arg)
	if err != nil {
		return nil, err
	}

	switch kind {
	case sink.KindFile:
		if arg == "-" {
			return sink.NewStdout(), nil
		}
		return sink.NewFile(arg)
	case sink.KindBackend:
		return sink.NewBackend(strings.TrimPrefix(u.Path, "/"), sink.NewHTTPUploader(u, nil)), nil
	default:
		return nil, fmt.Errorf("%w: unrecognized destination %q", sink.ErrUsage, arg)
	}
}

// openEnricher builds the -e MOUNTPOINT[:posix|:lustre] enricher (spec.md
// §6): an explicit trailing :posix/:lustre suffix overrides the
// filesystem-type probe.
func openEnricher(spec string) (*enrich.Enricher, error) {
	mountpoint := spec
	var override string
	if i := strings.LastIndex(spec, ":"); i >= 0 {
		mountpoint, override = spec[:i], spec[i+1:]
	}

	kind := enrich.POSIX
	if override != "" {
		k, err := enrich.ParseKind(override)
		if err != nil {
			return nil, err
		}
		kind = k
	} else {
		k, err := enrich.ProbeKind(mountpoint)
		if err != nil {
			return nil, err
		}
		kind = k
	}

	switch kind {
	case enrich.Lustre:
		if runtime.GOOS != "linux" {
			return nil, fmt.Errorf("%w: lustre enrichment requires a linux build", enrich.ErrUsage)
		}
		return enrich.NewLustre(mountpoint)
	default:
		return enrich.New(mountpoint)
	}
}
