package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/launcher"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/domain"
)

var errUsage = errors.New("invalid arguments")

type app struct {
	commands *launcher.Commands
	out      io.Writer
	json     bool
}

// command is one subcommand with its own flag set
type command struct {
	usage string
	short string
	flags *flag.FlagSet
	nargs int
	exec  func(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error
}

func (c *command) name() string {
	name, _, _ := strings.Cut(c.usage, " ")
	return name
}

func (c *command) run(ctx context.Context, a *app, args []string, stdout, stderr io.Writer) int {
	c.flags.SetOutput(io.Discard)
	if err := c.flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.printHelp(stdout)
			return 0
		}
		fmt.Fprintln(stderr, "error:", err)
		c.printHelp(stderr)
		return 2
	}

	rest := c.flags.Args()
	if len(rest) != c.nargs {
		fmt.Fprintf(stderr, "error: %s expects %d argument(s), got %d\n", c.name(), c.nargs, len(rest))
		c.printHelp(stderr)
		return 2
	}

	if err := c.exec(ctx, a, c.flags, rest); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(stderr, "error:", err)
			return 2
		}
		color.New(color.FgRed).Fprintln(stderr, "error:", launcher.Message(err))
		return 1
	}
	return 0
}

func (c *command) printHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: bookmarks", c.usage)
	fmt.Fprintln(w)
	fmt.Fprintln(w, c.short)
	if c.flags.HasFlags() {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Flags:")
		var buf strings.Builder
		c.flags.SetOutput(&buf)
		c.flags.PrintDefaults()
		c.flags.SetOutput(io.Discard)
		fmt.Fprint(w, buf.String())
	}
}

func lookup(name string) (*command, bool) {
	for _, c := range commands() {
		if c.name() == name {
			return c, true
		}
	}
	return nil, false
}

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func commands() []*command {
	return []*command{
		listCmd(), searchCmd(), getCmd(), openCmd(), addCmd(), updateCmd(), deleteCmd(),
		tagsCmd(), renameTagCmd(), deleteTagCmd(), exportCmd(), importCmd(),
	}
}

func listCmd() *command {
	fs := newFlags("list")
	fs.IntP("limit", "n", 0, "show at most n bookmarks")
	return &command{
		usage: "list [-n limit]",
		short: "List bookmarks, newest first",
		flags: fs,
		exec: func(ctx context.Context, a *app, fs *flag.FlagSet, _ []string) error {
			var limit *int
			if fs.Changed("limit") {
				n, _ := fs.GetInt("limit")
				limit = &n
			}
			bs, err := a.commands.List(ctx, limit)
			if err != nil {
				return err
			}
			return a.printBookmarks(bs)
		},
	}
}

func searchCmd() *command {
	fs := newFlags("search")
	fs.StringP("text", "s", "", "substring matched against URL, title and description")
	fs.StringP("tags", "t", "", "comma-separated tags")
	fs.Bool("or", false, "match any tag instead of all")
	return &command{
		usage: "search [-s text] [-t tags] [--or]",
		short: "Search bookmarks by text and tags",
		flags: fs,
		exec: func(ctx context.Context, a *app, fs *flag.FlagSet, _ []string) error {
			text, _ := fs.GetString("text")
			tagOr, _ := fs.GetBool("or")
			bs, err := a.commands.Search(ctx, text, changedString(fs, "tags"), tagOr)
			if err != nil {
				return err
			}
			return a.printBookmarks(bs)
		},
	}
}

func getCmd() *command {
	return &command{
		usage: "get <id>",
		short: "Show one bookmark",
		flags: newFlags("get"),
		nargs: 1,
		exec: func(ctx context.Context, a *app, _ *flag.FlagSet, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b, err := a.commands.Get(ctx, id)
			if err != nil {
				return err
			}
			if b == nil {
				return fmt.Errorf("%w: %d", domain.ErrNotFound, id)
			}
			return a.printBookmarks([]launcher.BookmarkResponse{*b})
		},
	}
}

func openCmd() *command {
	return &command{
		usage: "open <id>",
		short: "Open a bookmark in the default browser",
		flags: newFlags("open"),
		nargs: 1,
		exec: func(ctx context.Context, a *app, _ *flag.FlagSet, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.commands.Open(ctx, id)
		},
	}
}

func addCmd() *command {
	fs := newFlags("add")
	fs.String("title", "", "title")
	fs.StringP("tags", "t", "", "comma-separated tags")
	fs.StringP("desc", "d", "", "description")
	return &command{
		usage: "add <url> [--title t] [-t tags] [-d desc]",
		short: "Add a bookmark",
		flags: fs,
		nargs: 1,
		exec: func(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
			id, err := a.commands.Add(ctx, args[0],
				changedString(fs, "title"), changedString(fs, "tags"), changedString(fs, "desc"))
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(map[string]int64{"id": id})
			}
			color.New(color.FgGreen).Fprintf(a.out, "Added bookmark %d\n", id)
			return nil
		},
	}
}

func updateCmd() *command {
	fs := newFlags("update")
	fs.String("url", "", "new URL")
	fs.String("title", "", "new title")
	fs.StringP("tags", "t", "", "replace tags (comma-separated, empty clears)")
	fs.StringP("desc", "d", "", "new description")
	return &command{
		usage: "update <id> [--url u] [--title t] [-t tags] [-d desc]",
		short: "Change fields of a bookmark",
		flags: fs,
		nargs: 1,
		exec: func(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.commands.Update(ctx, id,
				changedString(fs, "url"), changedString(fs, "title"),
				changedString(fs, "tags"), changedString(fs, "desc"))
		},
	}
}

func deleteCmd() *command {
	return &command{
		usage: "delete <id>",
		short: "Delete a bookmark",
		flags: newFlags("delete"),
		nargs: 1,
		exec: func(ctx context.Context, a *app, _ *flag.FlagSet, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.commands.Delete(ctx, id)
		},
	}
}

func tagsCmd() *command {
	return &command{
		usage: "tags",
		short: "List tags with bookmark counts",
		flags: newFlags("tags"),
		exec: func(ctx context.Context, a *app, _ *flag.FlagSet, _ []string) error {
			tags, err := a.commands.ListTags(ctx)
			if err != nil {
				return err
			}
			if a.json {
				if tags == nil {
					tags = []domain.Tag{}
				}
				return a.printJSON(tags)
			}
			cyan := color.New(color.FgCyan)
			for _, t := range tags {
				cyan.Fprint(a.out, t.Name)
				fmt.Fprintf(a.out, " (%d)\n", t.Count)
			}
			return nil
		},
	}
}

func renameTagCmd() *command {
	return &command{
		usage: "rename-tag <old> <new>",
		short: "Rename a tag on every bookmark",
		flags: newFlags("rename-tag"),
		nargs: 2,
		exec: func(ctx context.Context, a *app, _ *flag.FlagSet, args []string) error {
			return a.commands.RenameTag(ctx, args[0], args[1])
		},
	}
}

func deleteTagCmd() *command {
	return &command{
		usage: "delete-tag <tag>",
		short: "Remove a tag from every bookmark",
		flags: newFlags("delete-tag"),
		nargs: 1,
		exec: func(ctx context.Context, a *app, _ *flag.FlagSet, args []string) error {
			return a.commands.DeleteTag(ctx, args[0])
		},
	}
}

func exportCmd() *command {
	fs := newFlags("export")
	fs.StringP("out", "o", "", "write to file instead of stdout")
	return &command{
		usage: "export [-o file]",
		short: "Export all bookmarks as JSON",
		flags: fs,
		exec: func(ctx context.Context, a *app, fs *flag.FlagSet, _ []string) error {
			bs, err := a.commands.Export(ctx)
			if err != nil {
				return err
			}
			if bs == nil {
				bs = []domain.Bookmark{}
			}

			data, err := json.MarshalIndent(bs, "", "  ")
			if err != nil {
				return err
			}
			data = append(data, '\n')

			out, _ := fs.GetString("out")
			if out == "" {
				_, err = a.out.Write(data)
				return err
			}
			if err := atomic.WriteFile(out, bytes.NewReader(data)); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			color.New(color.FgGreen).Fprintf(a.out, "Exported %d bookmarks to %s\n", len(bs), out)
			return nil
		},
	}
}

func importCmd() *command {
	fs := newFlags("import")
	fs.StringP("file", "f", "", "JSON file produced by export")
	return &command{
		usage: "import -f file",
		short: "Import bookmarks, skipping URLs already stored",
		flags: fs,
		exec: func(ctx context.Context, a *app, fs *flag.FlagSet, _ []string) error {
			path, _ := fs.GetString("file")
			if path == "" {
				return fmt.Errorf("%w: import needs --file", errUsage)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			var bs []domain.Bookmark
			if err := json.Unmarshal(data, &bs); err != nil {
				return fmt.Errorf("decode %s: %w", path, err)
			}

			res, err := a.commands.Import(ctx, bs)
			if err != nil {
				return err
			}
			if a.json {
				return a.printJSON(map[string]int{"added": res.Added, "skipped": res.Skipped})
			}
			color.New(color.FgGreen).Fprintf(a.out, "Imported %d bookmarks", res.Added)
			fmt.Fprintf(a.out, " (%d skipped)\n", res.Skipped)
			return nil
		},
	}
}

func (a *app) printBookmarks(bs []launcher.BookmarkResponse) error {
	if a.json {
		if bs == nil {
			bs = []launcher.BookmarkResponse{}
		}
		return a.printJSON(bs)
	}

	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)
	for _, b := range bs {
		yellow.Fprintf(a.out, "%d. ", b.Index)
		title := b.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintln(a.out, title)
		cyan.Fprintf(a.out, "   > %s\n", b.URI)
		if b.Tags != "" {
			fmt.Fprintf(a.out, "   # %s\n", b.Tags)
		}
		if b.Description != "" {
			fmt.Fprintf(a.out, "   + %s\n", b.Description)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q is not a number", errUsage, s)
	}
	return id, nil
}

// changedString returns the flag value only when it was given on the command line
func changedString(fs *flag.FlagSet, name string) *string {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetString(name)
	return &v
}
