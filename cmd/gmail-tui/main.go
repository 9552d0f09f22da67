package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/black-desk/gmail-tui/internal/config"
	"github.com/black-desk/gmail-tui/internal/imap"
	"github.com/black-desk/gmail-tui/internal/models"
	"github.com/black-desk/gmail-tui/internal/render"
	"github.com/black-desk/gmail-tui/internal/thread"
	"github.com/black-desk/gmail-tui/internal/ui"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type application struct {
	log  *logrus.Logger
	pool *imap.Pool
	svc  *imap.Service
}

// setup builds the composition root: config, logger, pool, service.
// No network activity happens here; sessions are established lazily on
// first use.
func setup() (*application, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	log.SetLevel(level)

	pool := imap.NewPool(cfg.IMAPServer, cfg.UseTLS, log)
	svc := imap.NewService(pool, cfg.Email, cfg.AppPassword, log)

	return &application{log: log, pool: pool, svc: svc}, nil
}

func newApp() *cli.App {
	folderFlag := &cli.StringFlag{
		Name:    "folder",
		Aliases: []string{"f"},
		Value:   "INBOX",
		Usage:   "IMAP folder to operate on",
	}
	limitFlag := &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Value:   20,
		Usage:   "maximum number of results",
	}
	formatFlag := &cli.StringFlag{
		Name:  "format",
		Value: "json",
		Usage: "output format: json, yaml, toml or raw",
	}

	return &cli.App{
		Name:  "gmail-tui",
		Usage: "browse, search and manage mail over IMAP",
		Action: func(c *cli.Context) error {
			app, err := setup()
			if err != nil {
				return err
			}
			defer app.pool.CloseAll()
			return ui.Run(app.svc)
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list the newest emails in a folder",
				Flags: []cli.Flag{folderFlag, limitFlag, formatFlag},
				Action: func(c *cli.Context) error {
					format, err := listingFormat(c.String("format"))
					if err != nil {
						return err
					}
					app, err := setup()
					if err != nil {
						return err
					}
					defer app.pool.CloseAll()

					emails, err := app.svc.ListEmails(c.String("folder"), c.Int("limit"))
					if err != nil {
						return err
					}
					if len(emails) == 0 {
						fmt.Println("No emails found.")
						return nil
					}
					return printList(format, "emails", emailMaps(emails))
				},
			},
			{
				Name:      "show",
				Usage:     "show one email by UID or Message-ID",
				ArgsUsage: "<uid|message-id>",
				Flags: []cli.Flag{
					folderFlag, formatFlag,
					&cli.BoolFlag{Name: "include-headers", Usage: "include the full header map"},
				},
				Action: func(c *cli.Context) error {
					format, err := render.ParseFormat(c.String("format"))
					if err != nil {
						return err
					}
					if c.NArg() != 1 {
						return errors.New("expected exactly one identifier argument")
					}
					app, err := setup()
					if err != nil {
						return err
					}
					defer app.pool.CloseAll()

					identifier := c.Args().First()
					folder := c.String("folder")

					if format == render.FormatRaw {
						raw, err := app.svc.FetchRawEmail(folder, identifier)
						if err != nil {
							return reportNotFound(err)
						}
						os.Stdout.Write(raw)
						return nil
					}

					email, err := app.svc.ShowEmail(folder, identifier, c.Bool("include-headers"))
					if err != nil {
						return reportNotFound(err)
					}
					return printValue(format, email)
				},
			},
			{
				Name:      "thread",
				Usage:     "show the conversation containing a message",
				ArgsUsage: "<message-id>",
				Flags:     []cli.Flag{folderFlag, formatFlag},
				Action: func(c *cli.Context) error {
					format, err := listingFormat(c.String("format"))
					if err != nil {
						return err
					}
					if c.NArg() != 1 {
						return errors.New("expected exactly one message-id argument")
					}
					app, err := setup()
					if err != nil {
						return err
					}
					defer app.pool.CloseAll()

					root, emails, err := app.svc.ShowThread(c.String("folder"), c.Args().First())
					if err != nil {
						return reportNotFound(err)
					}
					return printValue(format, map[string]any{
						"thread_root": root,
						"email_count": len(emails),
						"emails":      emails,
					})
				},
			},
			{
				Name:  "threads",
				Usage: "partition a folder into conversations",
				Flags: []cli.Flag{folderFlag, limitFlag, formatFlag},
				Action: func(c *cli.Context) error {
					format, err := listingFormat(c.String("format"))
					if err != nil {
						return err
					}
					app, err := setup()
					if err != nil {
						return err
					}
					defer app.pool.CloseAll()

					threads, err := app.svc.ListThreads(c.String("folder"), c.Int("limit"))
					if err != nil {
						return err
					}
					if len(threads) == 0 {
						fmt.Println("No threads found.")
						return nil
					}
					return printList(format, "threads", threadMaps(threads))
				},
			},
			{
				Name:  "search",
				Usage: "search a folder by header fields and body text",
				Flags: []cli.Flag{
					folderFlag, formatFlag,
					&cli.StringFlag{Name: "from", Usage: "match sender"},
					&cli.StringFlag{Name: "to", Usage: "match recipient"},
					&cli.StringFlag{Name: "subject", Usage: "match subject"},
					&cli.StringFlag{Name: "body", Usage: "match decoded body text (client-side)"},
				},
				Action: func(c *cli.Context) error {
					format, err := listingFormat(c.String("format"))
					if err != nil {
						return err
					}
					app, err := setup()
					if err != nil {
						return err
					}
					defer app.pool.CloseAll()

					filters := imap.SearchFilters{
						From:    c.String("from"),
						To:      c.String("to"),
						Subject: c.String("subject"),
						Body:    c.String("body"),
					}
					emails, err := app.svc.SearchEmails(c.String("folder"), filters)
					if err != nil {
						return err
					}
					if len(emails) == 0 {
						fmt.Println("No matching emails found.")
						return nil
					}
					return printList(format, "emails", emailMaps(emails))
				},
			},
			{
				Name:  "tree",
				Usage: "print the folder hierarchy",
				Action: func(c *cli.Context) error {
					app, err := setup()
					if err != nil {
						return err
					}
					defer app.pool.CloseAll()

					tree, err := app.svc.FolderTree()
					if err != nil {
						if errors.Is(err, imap.ErrEmptyListing) {
							fmt.Println("No folders found.")
							return nil
						}
						return err
					}
					fmt.Print(tree.Render())
					return nil
				},
			},
			{
				Name:      "mkdir",
				Usage:     "create a folder",
				ArgsUsage: "<name>",
				Action:    folderAction("create", func(svc *imap.Service, args []string) (bool, error) { return svc.CreateFolder(args[0]) }, 1),
			},
			{
				Name:      "rm",
				Usage:     "delete a folder",
				ArgsUsage: "<name>",
				Action:    folderAction("delete", func(svc *imap.Service, args []string) (bool, error) { return svc.DeleteFolder(args[0]) }, 1),
			},
			{
				Name:      "mv",
				Usage:     "rename a folder",
				ArgsUsage: "<old> <new>",
				Action:    folderAction("rename", func(svc *imap.Service, args []string) (bool, error) { return svc.RenameFolder(args[0], args[1]) }, 2),
			},
		},
	}
}

// folderAction wraps the create/delete/rename commands, which share
// the ok-or-rejected result shape.
func folderAction(verb string, op func(*imap.Service, []string) (bool, error), nargs int) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() != nargs {
			return fmt.Errorf("expected %d argument(s)", nargs)
		}
		app, err := setup()
		if err != nil {
			return err
		}
		defer app.pool.CloseAll()

		ok, err := op(app.svc, c.Args().Slice())
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("Server rejected %s of %q.\n", verb, c.Args().First())
			return nil
		}
		fmt.Printf("OK: %s %q.\n", verb, c.Args().First())
		return nil
	}
}

// listingFormat parses a format token for the listing commands, which
// have no raw bytes to emit. Rejection happens here, before any IMAP
// session is opened.
func listingFormat(token string) (render.Format, error) {
	format, err := render.ParseFormat(token)
	if err != nil {
		return 0, err
	}
	if format == render.FormatRaw {
		return 0, fmt.Errorf("%w: raw is only valid for show", render.ErrInvalidFormat)
	}
	return format, nil
}

// reportNotFound turns a NotFound error into a user-facing message
// with a zero exit; anything else propagates.
func reportNotFound(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		fmt.Println("Not found:", err)
		return nil
	}
	return err
}

func emailMaps(emails []*models.EmailMetadata) []map[string]any {
	maps := make([]map[string]any, 0, len(emails))
	for _, e := range emails {
		maps = append(maps, e.ToMap())
	}
	return maps
}

func threadMaps(threads []*thread.EmailThread) []map[string]any {
	maps := make([]map[string]any, 0, len(threads))
	for _, t := range threads {
		maps = append(maps, t.ToMap())
	}
	return maps
}

func printValue(format render.Format, v any) error {
	out, err := format.Render(v)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printList(format render.Format, key string, v any) error {
	out, err := format.RenderList(key, v)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
