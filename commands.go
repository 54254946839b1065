package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/electr1fy0/storyshelf/config"
	"github.com/electr1fy0/storyshelf/dialogs"
	"github.com/electr1fy0/storyshelf/events"
	"github.com/electr1fy0/storyshelf/locale"
	"github.com/electr1fy0/storyshelf/model"
	"github.com/electr1fy0/storyshelf/storage"
	"github.com/electr1fy0/storyshelf/story"
	"github.com/electr1fy0/storyshelf/utils"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	configPath  string
	libraryPath string
	fast        bool
	editing     string

	cfg  config.Config
	log  *zap.Logger
	pass string
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	cmd := &cobra.Command{
		Use:          "storyshelf",
		Short:        "storyshelf - a terminal library for your stories",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Browse the library
  storyshelf

  # Print the library, newest first
  storyshelf ls --sort lastUpdate --dir desc

  # Import a draft and an archive
  storyshelf import draft.md old-stories.json
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config.toml (default: user config dir)")
	cmd.PersistentFlags().StringVar(&a.libraryPath, "library", "", "Path to the library file (overrides library.path)")
	cmd.Flags().BoolVar(&a.fast, "fast", false, "Appear fast: skip launch checks")
	cmd.Flags().StringVar(&a.editing, "editing", "", "ID of the story that was being edited, to reselect it")

	cmd.AddCommand(newLsCmd(a))
	cmd.AddCommand(newImportCmd(a))
	cmd.AddCommand(newExportCmd(a))
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.libraryPath != "" {
		cfg.Library.Path = a.libraryPath
	}
	a.cfg = cfg

	log, err := utils.NewLogger(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: logging disabled: %v\n", err)
		return nil
	}
	a.log = log.With(zap.String("cmd", cmd.Name()))
	return nil
}

func (a *app) vault() storage.Vault {
	return storage.Vault{Path: a.cfg.Library.Path}
}

func (a *app) passphrase() string {
	if a.pass != "" || a.cfg.Library.PassphraseEnv == "" {
		return a.pass
	}
	return os.Getenv(a.cfg.Library.PassphraseEnv)
}

// loadLibrary opens the library for the non-interactive commands, asking
// for the passphrase on the terminal when the environment has none.
func (a *app) loadLibrary() (*storage.Library, error) {
	lib, err := a.vault().Load(a.passphrase())
	if !errors.Is(err, storage.ErrLocked) {
		return lib, err
	}
	pass, perr := readPassphrase("Passphrase: ")
	if perr != nil {
		return nil, fmt.Errorf("%w (set $%s)", err, a.cfg.Library.PassphraseEnv)
	}
	a.pass = pass
	return a.vault().Load(pass)
}

func readPassphrase(prompt string) (string, error) {
	fi, err := os.Stdin.Stat()
	if err != nil || fi.Mode()&os.ModeCharDevice == 0 || !liner.TerminalSupported() {
		return "", storage.ErrLocked
	}
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	return line.PasswordPrompt(prompt)
}

// markdownStyle picks the glamour style before the TUI owns the terminal.
func markdownStyle() string {
	out := termenv.NewOutput(os.Stdout)
	switch {
	case out.Profile == termenv.Ascii:
		return "notty"
	case out.HasDarkBackground():
		return "dark"
	default:
		return "light"
	}
}

// suggestOrder returns the sort key closest to a mistyped one, if any.
func suggestOrder(in string) string {
	best, bestDist := "", 3
	for _, o := range []story.Order{story.OrderName, story.OrderLastUpdate} {
		d := levenshtein.ComputeDistance(strings.ToLower(in), strings.ToLower(string(o)))
		if d < bestDist {
			best, bestDist = string(o), d
		}
	}
	return best
}

func (a *app) runTUI() error {
	vault := a.vault()
	pass := a.passphrase()

	// a locked library without a passphrase is unlocked inside the TUI
	var lib *storage.Library
	locked, err := vault.Locked()
	if err != nil {
		return err
	}
	if !locked || pass != "" {
		lib, err = vault.Load(pass)
		if err != nil {
			return err
		}
	}

	say, err := locale.New(a.cfg.UI.Locale)
	if err != nil {
		return err
	}

	var editing uuid.UUID
	if a.editing != "" {
		editing, err = uuid.Parse(a.editing)
		if err != nil {
			return fmt.Errorf("--editing: %w", err)
		}
	}

	var releases dialogs.ReleaseSource
	if a.cfg.Updates.Manifest != "" {
		releases = dialogs.ManifestSource{Path: a.cfg.Updates.Manifest}
	}

	m, err := model.New(model.Options{
		Vault:             vault,
		Library:           lib,
		Passphrase:        pass,
		Locale:            say,
		Bus:               events.NewBus(a.log),
		Log:               a.log,
		Releases:          releases,
		Version:           config.Version,
		DateFormat:        a.cfg.UI.DateFormat,
		MarkdownStyle:     markdownStyle(),
		AppearFast:        a.fast,
		PreviouslyEditing: editing,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	a.log.Info("starting tui", zap.String("library", vault.Path), zap.Bool("locked", lib == nil))
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func newLsCmd(a *app) *cobra.Command {
	var order, dir string
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "Print the library in sorted order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := story.ParseOrder(order)
			if err != nil {
				if hint := suggestOrder(order); hint != "" {
					return fmt.Errorf("%w (did you mean %q?)", err, hint)
				}
				return err
			}
			state := story.SortState{Order: o, Direction: story.Asc}
			if o == story.OrderLastUpdate {
				state.Direction = story.Desc
			}
			if dir != "" {
				if state.Direction, err = story.ParseDirection(dir); err != nil {
					return err
				}
			}

			lib, err := a.loadLibrary()
			if err != nil {
				return err
			}
			sorted, err := story.SortedView(lib.Stories(), state)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(sorted))
			for _, s := range sorted {
				rows = append(rows, []string{s.ID.String()[:8], s.Name, s.LastUpdate.Local().Format(a.cfg.UI.DateFormat)})
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "NAME", "UPDATED").
				Rows(rows...)
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&order, "sort", "name", "Sort key (name|lastUpdate)")
	cmd.Flags().StringVar(&dir, "dir", "", "Sort direction (asc|desc); default depends on the key")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import stories from markdown/text files or JSON archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.loadLibrary()
			if err != nil {
				return err
			}
			total := 0
			for _, path := range args {
				stories, err := storage.Import(path)
				if err != nil {
					return err
				}
				for _, s := range stories {
					s.Name = lib.UniqueName(s.Name)
					lib.Add(s)
				}
				total += len(stories)
				a.log.Info("imported", zap.String("path", path), zap.Int("count", len(stories)))
			}
			if err := a.vault().Save(lib, a.passphrase()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d stories\n", total)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "Write every story to a markdown file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.loadLibrary()
			if err != nil {
				return err
			}
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			n, err := storage.Export(lib, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d stories\n", n)
			return nil
		},
	}
}
