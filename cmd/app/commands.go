package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/quire/internal"
	"github.com/starford/quire/internal/encryption"
	"github.com/starford/quire/internal/noteservice"
)

var errUsage = errors.New("missing argument")

func passphraseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "passphrase",
		Aliases: []string{"p"},
		Usage:   "Note passphrase",
		Sources: cli.EnvVars("QUIRE_PASSPHRASE"),
	}
}

// withService opens the collection, runs fn and closes it again. CLI logs go
// to stderr so stdout carries only command output.
func withService(fn func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		app, err := internal.Open(
			internal.WithConfig(cfg),
			internal.WithVersion(version),
			internal.WithLogOutput(os.Stderr),
		)
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(ctx, cmd, app.Service)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func argID(cmd *cli.Command) (string, error) {
	id := cmd.Args().First()
	if id == "" {
		return "", fmt.Errorf("%w: note id", errUsage)
	}
	return id, nil
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// byID adapts a service call that takes only a note id.
func byID[T any](call func(svc *noteservice.Service, ctx context.Context, id string) (T, error)) cli.ActionFunc {
	return withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
		id, err := argID(cmd)
		if err != nil {
			return err
		}
		v, err := call(svc, ctx, id)
		if err != nil {
			return err
		}
		return printJSON(v)
	})
}

func noteCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "new",
			Usage: "Create a note",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "title"},
				&cli.StringFlag{Name: "content"},
				&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
				&cli.StringFlag{Name: "category"},
			},
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
				note, err := svc.CreateNote(ctx, noteservice.Draft{
					Title:    cmd.String("title"),
					Content:  cmd.String("content"),
					Tags:     splitTags(cmd.String("tags")),
					Category: cmd.String("category"),
				})
				if err != nil {
					return err
				}
				return printJSON(note)
			}),
		},
		{
			Name:  "list",
			Usage: "List notes, pinned first",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "query", Aliases: []string{"q"}},
				&cli.StringFlag{Name: "category"},
			},
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
				return printJSON(svc.ListNotes(ctx, cmd.String("query"), cmd.String("category")))
			}),
		},
		{
			Name:      "show",
			Usage:     "Print one note",
			ArgsUsage: "ID",
			Action:    byID((*noteservice.Service).GetNote),
		},
		{
			Name:      "edit",
			Usage:     "Change note fields; unset flags are left alone",
			ArgsUsage: "ID",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "title"},
				&cli.StringFlag{Name: "content"},
				&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
				&cli.StringFlag{Name: "category"},
				&cli.BoolFlag{Name: "glossary", Usage: "Highlight glossary terms in the content"},
			},
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
				id, err := argID(cmd)
				if err != nil {
					return err
				}
				var p noteservice.Patch
				if cmd.IsSet("title") {
					v := cmd.String("title")
					p.Title = &v
				}
				if cmd.IsSet("content") {
					v := cmd.String("content")
					p.Content = &v
				}
				if cmd.IsSet("tags") {
					v := splitTags(cmd.String("tags"))
					p.Tags = &v
				}
				if cmd.IsSet("category") {
					v := cmd.String("category")
					p.Category = &v
				}
				note, err := svc.UpdateNote(ctx, id, p, cmd.Bool("glossary"))
				if err != nil {
					return err
				}
				return printJSON(note)
			}),
		},
		{
			Name:      "pin",
			Usage:     "Toggle the pinned flag",
			ArgsUsage: "ID",
			Action:    byID((*noteservice.Service).PinNote),
		},
		{
			Name:      "duplicate",
			Usage:     "Copy a note",
			ArgsUsage: "ID",
			Action:    byID((*noteservice.Service).DuplicateNote),
		},
		{
			Name:      "delete",
			Usage:     "Delete a note",
			ArgsUsage: "ID",
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
				id, err := argID(cmd)
				if err != nil {
					return err
				}
				return svc.DeleteNote(ctx, id)
			}),
		},
		{
			Name:  "categories",
			Usage: "List categories in use",
			Action: withService(func(ctx context.Context, _ *cli.Command, svc *noteservice.Service) error {
				return printJSON(svc.Categories(ctx))
			}),
		},
		{
			Name:  "stats",
			Usage: "Collection statistics",
			Action: withService(func(ctx context.Context, _ *cli.Command, svc *noteservice.Service) error {
				return printJSON(svc.Stats(ctx))
			}),
		},
		{
			Name:  "export",
			Usage: "Write the collection to a dated JSON file",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "dir", Value: ".", Usage: "Target directory"},
			},
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
				path, err := svc.ExportToFile(ctx, cmd.String("dir"))
				if err != nil {
					return err
				}
				fmt.Println(path)
				return nil
			}),
		},
		{
			Name:      "import",
			Usage:     "Merge notes from an exported file",
			ArgsUsage: "FILE",
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
				path := cmd.Args().First()
				if path == "" {
					return fmt.Errorf("%w: file", errUsage)
				}
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				res := svc.Import(ctx, f)
				if err := printJSON(res); err != nil {
					return err
				}
				if !res.Success {
					return errors.New(res.Error)
				}
				return nil
			}),
		},
		{
			Name:      "encrypt",
			Usage:     "Lock a note with a passphrase",
			ArgsUsage: "ID",
			Flags: []cli.Flag{
				passphraseFlag(),
				&cli.StringFlag{Name: "confirm", Usage: "Passphrase again; defaults to --passphrase"},
			},
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
				id, err := argID(cmd)
				if err != nil {
					return err
				}
				pass := cmd.String("passphrase")
				confirm := pass
				if cmd.IsSet("confirm") {
					confirm = cmd.String("confirm")
				}
				note, err := svc.EncryptNote(ctx, id, pass, confirm)
				if err != nil {
					return err
				}
				return printJSON(note)
			}),
		},
		{
			Name:      "decrypt",
			Usage:     "Unlock a note permanently, or print it with --keep",
			ArgsUsage: "ID",
			Flags: []cli.Flag{
				passphraseFlag(),
				&cli.BoolFlag{Name: "keep", Usage: "Print the content and leave the note locked"},
			},
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
				id, err := argID(cmd)
				if err != nil {
					return err
				}
				pass := cmd.String("passphrase")
				if cmd.Bool("keep") {
					content, err := svc.RevealNote(ctx, id, pass)
					if err != nil {
						return err
					}
					fmt.Println(content)
					return nil
				}
				note, err := svc.DecryptNote(ctx, id, pass)
				if err != nil {
					return err
				}
				return printJSON(note)
			}),
		},
		{
			Name:      "remove-encryption",
			Usage:     "Drop the ciphertext of a locked note without a passphrase",
			ArgsUsage: "ID",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "yes", Usage: "Confirm that the encrypted content is discarded"},
				&cli.StringFlag{Name: "content", Usage: "Content to keep in the unlocked note"},
			},
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
				id, err := argID(cmd)
				if err != nil {
					return err
				}
				if !cmd.Bool("yes") {
					return errors.New("refusing to discard encrypted content without --yes")
				}
				note, err := svc.RemoveEncryption(ctx, id, cmd.String("content"))
				if err != nil {
					return err
				}
				return printJSON(note)
			}),
		},
		{
			Name:      "analyze",
			Usage:     "Writing insights for a note",
			ArgsUsage: "ID",
			Flags:     []cli.Flag{passphraseFlag()},
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
				id, err := argID(cmd)
				if err != nil {
					return err
				}
				report, err := svc.Insights(ctx, id, cmd.String("passphrase"))
				if err != nil {
					return err
				}
				return printJSON(report)
			}),
		},
		{
			Name:      "grammar",
			Usage:     "Grammar issues in a note",
			ArgsUsage: "ID",
			Flags:     []cli.Flag{passphraseFlag()},
			Action: withService(func(ctx context.Context, cmd *cli.Command, svc *noteservice.Service) error {
				id, err := argID(cmd)
				if err != nil {
					return err
				}
				issues, err := svc.Grammar(ctx, id, cmd.String("passphrase"))
				if err != nil {
					return err
				}
				return printJSON(issues)
			}),
		},
		{
			Name:      "check-passphrase",
			Usage:     "Rate a passphrase",
			ArgsUsage: "PASSPHRASE",
			Action: func(_ context.Context, cmd *cli.Command) error {
				p := cmd.Args().First()
				if p == "" {
					p = os.Getenv("QUIRE_PASSPHRASE")
				}
				return printJSON(encryption.ValidatePassphrase(p))
			},
		},
		{
			Name:  "seed",
			Usage: "Load the demo notes into an empty collection",
			Action: withService(func(ctx context.Context, _ *cli.Command, svc *noteservice.Service) error {
				n, err := svc.Seed(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("seeded %d notes\n", n)
				return nil
			}),
		},
	}
}
