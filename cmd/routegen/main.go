// Command routegen compiles app/routes into the generated route table.
package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mwm/pkg/logger"
	"github.com/dmitrymomot/mwm/pkg/routegen"
)

type options struct {
	routesDir  string
	modulePath string
	publicDir  string
	prefix     string
	out        string
	manifest   string
	pkg        string
	strict     bool
}

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "routegen",
		Short:        "Compile file-based routes into a Go route table",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return generate(opts, logger.New())
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.routesDir, "routes", "app/routes", "routes root directory")
	f.StringVar(&opts.modulePath, "module", "github.com/dmitrymomot/mwm/app/routes", "import path of the routes root")
	f.StringVar(&opts.publicDir, "public", "app/public/static", "static asset directory, empty to skip")
	f.StringVar(&opts.prefix, "prefix", "/static", "URL prefix of static assets")
	f.StringVar(&opts.out, "out", "app/routetable/routes.go", "generated Go file")
	f.StringVar(&opts.manifest, "manifest", "app/routetable/routes.json", "generated JSON manifest, empty to skip")
	f.StringVar(&opts.pkg, "package", "routetable", "package name of the generated file")
	f.BoolVar(&opts.strict, "strict", false, "fail when any route file is skipped")
	return cmd
}

func generate(opts options, log *slog.Logger) error {
	res, err := routegen.Compile(os.DirFS(opts.routesDir), routegen.Config{
		ModulePath: opts.modulePath,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	if opts.strict && len(res.Skipped) > 0 {
		return fmt.Errorf("skipped route files: %w", res.SkippedErrors())
	}

	if opts.publicDir != "" {
		res.Assets, err = routegen.ScanAssets(os.DirFS(opts.publicDir), opts.prefix)
		if err != nil {
			return err
		}
	}

	var src bytes.Buffer
	if err := res.WriteGo(&src, opts.pkg, routegen.DefaultFacade); err != nil {
		return err
	}
	if err := writeFile(opts.out, src.Bytes()); err != nil {
		return err
	}

	if opts.manifest != "" {
		var manifest bytes.Buffer
		if err := res.WriteJSON(&manifest); err != nil {
			return err
		}
		if err := writeFile(opts.manifest, manifest.Bytes()); err != nil {
			return err
		}
	}

	log.Info("route table generated",
		slog.String("out", opts.out),
		slog.Int("routes", len(res.Routes)),
		slog.Int("assets", len(res.Assets)),
		slog.Int("skipped", len(res.Skipped)),
	)
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
