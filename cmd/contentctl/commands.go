package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/stillwater/lodge/internal/client"
	"github.com/stillwater/lodge/internal/content"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	out, errOut io.Writer
	in          io.Reader

	dir      string
	apiURL   string
	apiKey   string
	token    string
	verbose  bool
	logger   *slog.Logger
	store    *content.Store
	warnings []content.Warning
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	_ = godotenv.Load()
	a := &app{out: out, errOut: errOut, in: os.Stdin}

	root := &cobra.Command{
		Use:           "contentctl",
		Short:         "Edit Stillwater Lodge site content",
		Long:          "Edit the site content tree kept in a local directory and publish images to the gallery.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.dir, "dir", envOr("LODGE_CONTENT_DIR", ".lodge"), "directory holding the content tree")
	pf.StringVar(&a.apiURL, "api", envOr("LODGE_API_URL", "http://localhost:8080"), "base URL of the lodge API")
	pf.StringVar(&a.apiKey, "api-key", os.Getenv("UPLOAD_API_KEY"), "shared upload key sent as x-api-key")
	pf.StringVar(&a.token, "token", os.Getenv("LODGE_TOKEN"), "bearer token from the identity provider")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		a.showCmd(),
		a.addCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.replaceCmd(),
		a.reorderCmd(),
		a.dedupeCmd(),
		a.backgroundCmd(),
		a.siteCmd(),
		a.publishCmd(),
		a.mediaCmd(),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (a *app) open() error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	backend, err := content.NewFileBackend(a.dir)
	if err != nil {
		return err
	}
	a.store = content.NewStore(content.Options{
		Backend:   backend,
		Scheduler: content.NewManualScheduler(),
		Logger:    a.logger,
		OnWarning: func(w content.Warning) { a.warnings = append(a.warnings, w) },
	})
	return nil
}

// close writes any pending edit. A warning means the edit was not saved.
func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	a.store.Flush()
	if len(a.warnings) == 0 {
		return nil
	}
	for _, w := range a.warnings {
		fmt.Fprintln(a.errOut, "warning:", w.Message)
	}
	return errors.New("changes were not saved")
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readArg returns arg as bytes; "-" reads stdin and "@path" reads a file.
func (a *app) readArg(arg string) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(a.in)
	case len(arg) > 1 && arg[0] == '@':
		return os.ReadFile(arg[1:])
	default:
		return []byte(arg), nil
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [collection]",
		Short: "Print the content tree or one collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.printJSON(a.store.Tree())
			}
			h, err := content.Lookup(args[0])
			if err != nil {
				return err
			}
			raw, err := h.ItemsJSON(a.store)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, string(raw))
			return err
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "add <collection> <json|@file|->",
		Short:   "Append an item; a missing id gets the next free one",
		Example: `  contentctl add wines '{"name":"House red","vintage":"2023"}'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := content.Lookup(args[0])
			if err != nil {
				return err
			}
			raw, err := a.readArg(args[1])
			if err != nil {
				return err
			}
			if err := h.AddJSON(a.store, raw); err != nil {
				return err
			}
			ids := h.IDs(a.store)
			fmt.Fprintf(a.out, "added %s %s\n", h.Name(), ids[len(ids)-1])
			return nil
		},
	}
}

func (a *app) updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "update <collection> <id> <json|@file|->",
		Short:   "Merge JSON fields into one item",
		Example: `  contentctl update rooms 2 '{"price":"$680"}'`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := content.Lookup(args[0])
			if err != nil {
				return err
			}
			raw, err := a.readArg(args[2])
			if err != nil {
				return err
			}
			if err := h.PatchJSON(a.store, args[1], raw); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "updated %s %s\n", h.Name(), args[1])
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Remove one item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := content.Lookup(args[0])
			if err != nil {
				return err
			}
			if err := h.Delete(a.store, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s %s\n", h.Name(), args[1])
			return nil
		},
	}
}

func (a *app) replaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replace <collection> <json-array|@file|->",
		Short: "Replace a whole collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := content.Lookup(args[0])
			if err != nil {
				return err
			}
			raw, err := a.readArg(args[1])
			if err != nil {
				return err
			}
			if err := h.ReplaceJSON(a.store, raw); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "replaced %s (%d items)\n", h.Name(), h.Len(a.store))
			return nil
		},
	}
}

func (a *app) reorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <collection> <from> <to>",
		Short: "Move the item at index from to index to",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := content.Lookup(args[0])
			if err != nil {
				return err
			}
			from, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("from: %w", err)
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("to: %w", err)
			}
			if err := h.Reorder(a.store, from, to); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s order: %v\n", h.Name(), h.IDs(a.store))
			return nil
		},
	}
}

func (a *app) dedupeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dedupe <collection>",
		Short: "Drop repeated items, keeping the first (gallery matches on image URL)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := content.Lookup(args[0])
			if err != nil {
				return err
			}
			n, err := h.DeduplicateDefault(a.store)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "removed %d duplicate(s) from %s\n", n, h.Name())
			return nil
		},
	}
}

func (a *app) backgroundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-background <hero|rooms|dining|events> <image-url>",
		Short: "Set a section background image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.SetBackground(content.Section(args[0]), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s background set\n", args[0])
			return nil
		},
	}
}

func (a *app) siteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "site <json|@file|->",
		Short:   "Merge JSON fields into the site copy",
		Example: `  contentctl site '{"heroSubtitle":"Open all winter"}'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := a.readArg(args[0])
			if err != nil {
				return err
			}
			next := a.store.Tree().SiteContent
			if err := json.Unmarshal(raw, &next); err != nil {
				return fmt.Errorf("decode site copy: %w", err)
			}
			a.store.UpdateSiteContent(func(content.SiteContent) content.SiteContent { return next })
			return a.printJSON(next)
		},
	}
}

func (a *app) apiClient() *client.Client {
	c := client.New(a.apiURL, a.apiKey, 60*time.Second, a.logger)
	if a.token != "" {
		c = c.WithToken(a.token)
	}
	return c
}

func (a *app) publishCmd() *cobra.Command {
	var folder, title, caption, contentType string

	cmd := &cobra.Command{
		Use:   "publish <file>",
		Short: "Upload an image and add it to the gallery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}
			if contentType == "" {
				contentType = mime.TypeByExtension(filepath.Ext(args[0]))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			pub, err := a.apiClient().Publish(ctx, client.File{
				Name:        filepath.Base(args[0]),
				ContentType: contentType,
				Folder:      folder,
				Body:        f,
				Size:        info.Size(),
			})
			if err != nil {
				return err
			}

			if err := content.Gallery.Add(a.store, content.GalleryImage{
				URL:      pub.Grant.PublicURL,
				Title:    title,
				Caption:  caption,
				Category: pub.Record.Folder,
			}); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "published %s\n", pub.Grant.PublicURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "gallery", "destination folder (gallery category)")
	cmd.Flags().StringVar(&title, "title", "", "gallery title")
	cmd.Flags().StringVar(&caption, "caption", "", "gallery caption")
	cmd.Flags().StringVar(&contentType, "content-type", "", "MIME type (default from the file extension)")
	return cmd
}

func (a *app) mediaCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "media",
		Short: "List media registered with the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.apiClient().ListMedia(cmd.Context(), category)
			if err != nil {
				return err
			}
			return a.printJSON(recs)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list this folder")
	return cmd
}
