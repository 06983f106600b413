package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/vango-dev/isodom/internal/config"
	"github.com/vango-dev/isodom/internal/demo"
	"github.com/vango-dev/isodom/internal/errors"
	"github.com/vango-dev/isodom/pkg/dom"
	"github.com/vango-dev/isodom/pkg/driver"
)

type renderOptions struct {
	configPath string
	demo       string
	depth      int
	event      string
	clicks     []string
	selector   string
}

func renderCmd(logLevel *string) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a demo and print its HTML",
		Long: `Render a demo into a fresh document, dispatch events at the
given elements, and print the resulting HTML.

Elements are addressed by child element indexes from the render root,
separated by dots.

Examples:
  isodom render --demo toggle --click 0
  isodom render --demo recursive --depth 2 --click 0.1.0 --select button.toggle
  isodom render --demo list --click 0.0 --click 0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if opts.demo != "" {
				cfg.Demo = opts.demo
			}
			if opts.depth > 0 {
				cfg.Depth = opts.depth
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg, *logLevel)
			if err != nil {
				return err
			}
			return runRender(cmd.OutOrStdout(), cfg, opts, driver.WithLogger(logger))
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file (isodom.yaml or isodom.json)")
	cmd.Flags().StringVarP(&opts.demo, "demo", "d", "", fmt.Sprintf("Demo to render: %s", strings.Join(demo.Names(), ", ")))
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "Nesting depth of the recursive demo")
	cmd.Flags().StringVarP(&opts.event, "event", "e", "click", "Event type dispatched by --click")
	cmd.Flags().StringArrayVar(&opts.clicks, "click", nil, "Element path to dispatch at, e.g. 0.1.0 (repeatable)")
	cmd.Flags().StringVarP(&opts.selector, "select", "s", "", "Print only elements matching this CSS selector")

	return cmd
}

// loadConfig reads path, or returns the defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.New(), nil
	}
	return config.LoadFile(path)
}

func runRender(w io.Writer, cfg *config.Config, opts renderOptions, dopts ...driver.Option) error {
	app, err := demo.Lookup(cfg.Demo, cfg.Depth)
	if err != nil {
		return err
	}
	d, err := driver.Mount(dom.NewDocument(cfg.RootID), app, dopts...)
	if err != nil {
		return err
	}
	defer d.Dispose()

	for _, raw := range opts.clicks {
		path, err := parsePath(raw)
		if err != nil {
			return err
		}
		target, ok := d.Document().ElementAt(path)
		if !ok {
			return errors.New("E105").WithDetail(fmt.Sprintf("no element at %q", raw))
		}
		if _, err := d.Dispatch(target, opts.event); err != nil {
			return err
		}
	}

	doc := goquery.NewDocumentFromNode(d.Document().Root())
	sel := doc.Selection
	if opts.selector != "" {
		sel = doc.Find(opts.selector)
	}
	for i := range sel.Nodes {
		markup, err := goquery.OuterHtml(sel.Eq(i))
		if err != nil {
			return err
		}
		fmt.Fprintln(w, markup)
	}
	return nil
}

// parsePath turns "0.1.0" into child element indexes. The empty string
// addresses the render root.
func parsePath(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ".")
	path := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, errors.New("E106").
				WithDetail(fmt.Sprintf("invalid element path %q", raw)).
				WithSuggestion("use dot separated child indexes, e.g. 0.1.0")
		}
		path[i] = n
	}
	return path, nil
}
