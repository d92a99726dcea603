package cmd

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vannrr/fmark/internal/bookmark"
	"github.com/vannrr/fmark/internal/browser"
	"github.com/vannrr/fmark/internal/config"
	"github.com/vannrr/fmark/internal/log"
	"github.com/vannrr/fmark/internal/menu"
	"github.com/vannrr/fmark/internal/session"
	"github.com/vannrr/fmark/internal/watcher"
)

// Environment variables read besides the BM_* config keys.
const (
	DefaultOptsEnv = "BM_DEFAULT_OPTS"
	DebugEnv       = "FMARK_DEBUG"
	LogPathEnv     = "FMARK_LOG"
	envPrefix      = "BM"
	localConfig    = ".fmark/config.yaml"
	defaultLogFile = "debug.log"
)

var version = "dev"

// app holds the state shared by the command tree of one execution.
type app struct {
	cfgFile  string
	debug    bool
	cfg      config.Config
	closeLog func()
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{closeLog: func() {}}

	root := &cobra.Command{
		Use:   "fmark",
		Short: "Manage a plain text bookmark file through a menu program",
		Long: `fmark keeps bookmarks in a plain text file, one per line:

  {T}{title} {C}{category} {U}{url}

Run without arguments to pick, open, add, modify or remove bookmarks with
bemenu, dmenu, rofi, fzf or the built-in terminal picker. Lines that are not
bookmarks are kept where they are.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runInteractive,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ~/.config/fmark/config.yaml)")
	flags.StringP("menu", "m", config.DefaultMenu,
		"menu program: "+strings.Join(config.SupportedMenus, ", "))
	flags.StringP("browser", "b", config.DefaultBrowser, "browser used to open bookmarks")
	flags.StringP("path", "p", "", "bookmark file (default: $HOME/.bookmarks)")
	flags.IntP("rows", "r", config.DefaultRows, "rows shown by the menu program (1-255)")
	flags.Bool("watch", true, "warn when the bookmark file changes on disk during a session")
	flags.BoolVar(&a.debug, "debug", false, "write debug logs (path from $"+LogPathEnv+", default "+defaultLogFile+")")

	root.AddCommand(
		newListCmd(a),
		newCategoriesCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newFmtCmd(a),
		newInitConfigCmd(a),
		newSaveConfigCmd(a),
	)
	return root, a
}

// setup enables logging and loads the configuration.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if err := a.setupLog(cmd, args); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// setupLog enables logging for --debug or FMARK_DEBUG.
func (a *app) setupLog(_ *cobra.Command, _ []string) error {
	if !a.debug && os.Getenv(DebugEnv) == "" {
		return nil
	}
	closeLog, err := log.Init(cmp.Or(os.Getenv(LogPathEnv), defaultLogFile))
	if err != nil {
		return fmt.Errorf("initializing log: %w", err)
	}
	a.closeLog = closeLog
	return nil
}

// loadConfig merges defaults, the config file, BM_* environment variables
// and flags, in increasing precedence.
func loadConfig(cmd *cobra.Command, cfgFile string) (config.Config, error) {
	v := viper.New()

	defaults := config.Defaults()
	v.SetDefault("menu", defaults.Menu)
	v.SetDefault("browser", defaults.Browser)
	v.SetDefault("path", defaults.Path)
	v.SetDefault("rows", defaults.Rows)
	v.SetDefault("watch", defaults.Watch)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	for _, key := range []string{"menu", "browser", "path", "rows", "watch"} {
		if flag := cmd.Flags().Lookup(key); flag != nil {
			_ = v.BindPFlag(key, flag)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .fmark/config.yaml (current directory)
		// 2. ~/.config/fmark/config.yaml (user config)
		if _, err := os.Stat(localConfig); err == nil {
			v.SetConfigFile(localConfig)
		} else {
			v.AddConfigPath(filepath.Dir(config.DefaultConfigPath()))
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return config.Config{}, fmt.Errorf("reading config: %w", err)
		}
		log.Debug(log.CatConfig, "No config file, using defaults")
	} else {
		log.Debug(log.CatConfig, "Loaded config", "path", v.ConfigFileUsed())
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Rows = config.ClampRows(cfg.Rows)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// bookmarkPath resolves the bookmark file. The default file is created from
// the template when missing; an explicitly configured one must exist.
func (a *app) bookmarkPath() (string, error) {
	if a.cfg.Path != "" {
		if _, err := os.Stat(a.cfg.Path); err != nil {
			return "", fmt.Errorf("bookmark file %s: %w", a.cfg.Path, err)
		}
		return a.cfg.Path, nil
	}

	path, err := config.DefaultBookmarkPath()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := bookmark.WriteFile(path, bookmark.Template()); err != nil {
			return "", fmt.Errorf("creating bookmark file: %w", err)
		}
		log.Info(log.CatStore, "Created bookmark file", "path", path)
	}
	return path, nil
}

// open reads the bookmark file.
func (a *app) open() (string, *bookmark.ParsedFile, error) {
	path, err := a.bookmarkPath()
	if err != nil {
		return "", nil, err
	}
	file, err := bookmark.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return path, file, nil
}

func (a *app) runInteractive(cmd *cobra.Command, _ []string) error {
	path, file, err := a.open()
	if err != nil {
		return err
	}

	chooser, err := menu.New(a.cfg.Menu, a.cfg.Rows)
	if err != nil {
		return err
	}
	text := bookmark.NewPlainText()
	s := session.New(chooser, browser.New(a.cfg.Browser), file, text)

	stopWatch := a.watch(path, s)
	runErr := s.Run(cmd.Context())
	stopWatch()

	if file.Edited() && s.ExternallyModified() {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(),
			"warning: %s was changed by another program during this session; those changes are overwritten\n", path)
	}

	return errors.Join(runErr, text.Flush(path, file))
}

// watch starts reporting external modifications of path to s. It returns a
// function stopping the watcher; failures only disable the warning.
func (a *app) watch(path string, s *session.Session) func() {
	if !a.cfg.Watch {
		return func() {}
	}

	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Failed to create watcher", err)
		return func() {}
	}
	changes, err := w.Start()
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Failed to start watcher", err)
		_ = w.Stop()
		return func() {}
	}
	s.WatchChanges(changes)
	return func() { _ = w.Stop() }
}

// withDefaultOpts prepends the whitespace separated options of opts to args,
// so options given on the command line come later and win.
func withDefaultOpts(opts string, args []string) []string {
	fields := strings.Fields(opts)
	if len(fields) == 0 {
		return args
	}
	return append(fields, args...)
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, a := newRootCmd()
	defer func() { a.closeLog() }()

	root.SetArgs(withDefaultOpts(os.Getenv(DefaultOptsEnv), os.Args[1:]))
	return root.ExecuteContext(ctx)
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}
