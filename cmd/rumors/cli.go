package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/rumors/internal/errors"
	"github.com/hpungsan/rumors/internal/ops"
	"github.com/hpungsan/rumors/internal/theory"
	"github.com/hpungsan/rumors/internal/web"
)

// newCLIApp creates the CLI application with all commands.
// svc may be nil when only help or version output is needed.
func newCLIApp(svc *ops.Service, logger *zap.SugaredLogger) *cli.App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	app := &cli.App{
		Name:    "rumors",
		Usage:   "AI-generated satirical conspiracy theories",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(svc, logger),
			generateCmd(svc),
			showCmd(svc),
			listCmd(svc),
			favoriteCmd(svc),
			shareCmd(svc),
			copyCmd(svc),
			statsCmd(svc),
			statusCmd(svc),
			categoriesCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(svc *ops.Service, logger *zap.SugaredLogger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Listen address (overrides config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			cfg := svc.Config()
			if c.IsSet("bind") {
				cfg.Bind = c.String("bind")
			}
			if c.IsSet("port") {
				cfg.Port = c.Int("port")
			}
			if err := cfg.Validate(); err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}

			srv := web.NewServer(svc, logger, Version)
			if err := web.Run(srv, logger); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// generateCmd creates the generate command.
func generateCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate and store a new theory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Value: theory.FallbackCategory, Usage: "Category slug (see 'rumors categories')"},
			&cli.StringFlag{Name: "classification", Aliases: []string{"k"}, Usage: "TOP SECRET|SECRET|CONFIDENTIAL"},
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 1, Usage: "Number of theories to generate"},
		},
		Action: func(c *cli.Context) error {
			input := ops.GenerateInput{
				Category:       c.String("category"),
				Classification: c.String("classification"),
			}

			if n := c.Int("count"); n != 1 {
				items, err := svc.GenerateBatch(c.Context, input, n)
				if err != nil {
					return outputError(err)
				}
				return outputJSON(c.App.Writer, map[string]any{"items": items, "count": len(items)})
			}

			t, err := svc.GenerateAndSave(c.Context, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, t)
		},
	}
}

// showCmd creates the show command.
func showCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a stored theory",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			t, err := fetch(c.Context, svc, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, t)
		},
	}
}

// listCmd creates the list command.
func listCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored theories",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Only this category (newest first)"},
			&cli.StringFlag{Name: "sort", Aliases: []string{"s"}, Value: "recent", Usage: "recent|popular|trending"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Max results (default 10, max 100)"},
		},
		Action: func(c *cli.Context) error {
			var (
				items []theory.Theory
				err   error
			)
			limit := c.Int("limit")

			switch sort := strings.ToLower(c.String("sort")); {
			case c.String("category") != "":
				items, err = svc.ListByCategory(c.Context, c.String("category"), limit)
			case sort == "recent":
				items, err = svc.ListRecent(c.Context, limit)
			case sort == "popular":
				items, err = svc.ListPopular(c.Context, limit)
			case sort == "trending":
				items, err = svc.ListTrending(c.Context, limit)
			default:
				err = errors.NewInvalidRequest("sort must be one of: recent, popular, trending")
			}
			if err != nil {
				return outputError(err)
			}

			if items == nil {
				items = []theory.Theory{}
			}
			return outputJSON(c.App.Writer, map[string]any{"items": items, "count": len(items)})
		},
	}
}

// favoriteCmd creates the favorite command.
func favoriteCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "favorite",
		Usage:     "Toggle a theory's favorite flag",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			isFavorite, err := svc.ToggleFavorite(c.Context, id)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, map[string]any{"id": id, "is_favorite": isFavorite})
		},
	}
}

// shareCmd creates the share command.
func shareCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "share",
		Usage:     "Record a share and print the platform share URL",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "platform", Aliases: []string{"p"}, Value: string(theory.Twitter), Usage: "facebook|twitter|reddit"},
		},
		Action: func(c *cli.Context) error {
			platform := theory.Platform(strings.ToLower(c.String("platform")))
			if !platform.Valid() {
				return outputError(errors.NewInvalidRequest("platform must be one of: facebook, twitter, reddit"))
			}

			t, err := lookup(c.Context, svc, c.Args().First())
			if err != nil {
				return outputError(err)
			}

			svc.TrackShare(c.Context, t.ID, string(platform))

			return outputJSON(c.App.Writer, map[string]any{
				"id":         t.ID,
				"platform":   platform,
				"share_url":  theory.ShareURL(platform, t.Content, svc.Config().TheoryURL(t.ID)),
				"share_text": theory.ShareText(platform, t.Content),
			})
		},
	}
}

// copyCmd creates the copy command. It prints the raw theory text so it can
// be piped into a clipboard tool, and records a copy.
func copyCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "Print a theory's text and record a copy",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			t, err := lookup(c.Context, svc, c.Args().First())
			if err != nil {
				return outputError(err)
			}

			svc.TrackCopy(c.Context, t.ID)
			_, err = fmt.Fprintln(c.App.Writer, t.Content)
			return err
		},
	}
}

// statsCmd creates the stats command.
func statsCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show theory counts per category",
		Action: func(c *cli.Context) error {
			stats, err := svc.CategoryStats(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, stats)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(svc *ops.Service) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Check generator and database connectivity",
		Action: func(c *cli.Context) error {
			st := svc.Status(c.Context)
			return outputJSON(c.App.Writer, map[string]any{"generator": st.Generator, "database": st.Database})
		},
	}
}

// categoriesCmd creates the categories command.
func categoriesCmd() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List the theory categories",
		Action: func(c *cli.Context) error {
			type row struct {
				Slug        string `json:"slug"`
				Title       string `json:"title"`
				Description string `json:"description"`
			}
			cats := theory.Categories()
			rows := make([]row, len(cats))
			for i, cat := range cats {
				rows[i] = row{Slug: cat.Slug, Title: cat.Title, Description: cat.Description}
			}
			return outputJSON(c.App.Writer, rows)
		},
	}
}

// Helper functions

// fetch reads a theory as a view, turning absence into NOT_FOUND.
func fetch(ctx context.Context, svc *ops.Service, id string) (*theory.Theory, error) {
	t, err := svc.GetByID(ctx, id)
	return requireFound(t, err, id)
}

// lookup reads a theory without recording a view.
func lookup(ctx context.Context, svc *ops.Service, id string) (*theory.Theory, error) {
	t, err := svc.Lookup(ctx, id)
	return requireFound(t, err, id)
}

func requireFound(t *theory.Theory, err error, id string) (*theory.Theory, error) {
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.NewNotFound(id)
	}
	return t, nil
}

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var rErr *errors.RumorError
	if stderrors.As(err, &rErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", rErr.Code, rErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
