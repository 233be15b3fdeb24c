package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mandalart/internal/config"
	"mandalart/internal/format"
	"mandalart/internal/logging"
	"mandalart/internal/model"
	"mandalart/internal/mutate"
	"mandalart/internal/store"
)

type App struct {
	Dir        string
	ConfigPath string
	PrettyJSON bool
	Format     string
	LogLevel   string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "mandalart",
		Short:        "Mandalart 9x9 goal grids: editor, CLI and web gallery",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Fill in a grid in the terminal (resumes the saved draft)
  mandalart create

  # Create from a file without the editor
  mandalart create --from goals.yaml --name "Sam" --tag health

  # Serve the web gallery
  mandalart serve --addr 127.0.0.1:8080

  # Direct lookup (shortcut for: mandalart show <id>)
  mandalart 0b4a6c4e-8f0e-4c1e-9a57-8c1b3f0f5d21
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("MANDALART_DIR", ""), "Data directory (overrides data_dir from the config file)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("MANDALART_CONFIG", ""), "Config file (default: ~/.config/mandalart/config.toml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("MANDALART_FORMAT", "json"), "Output format (json|edn|yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error; default from config)")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newCreateCmd(app))
	cmd.AddCommand(newDraftCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newUpdateCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newCellCmd(app))
	cmd.AddCommand(newValidateCmd(app))
	cmd.AddCommand(newRequestDeleteCmd(app))
	cmd.AddCommand(newAdminCmd(app))
	cmd.AddCommand(newOGCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// env is everything a command needs once the config is resolved.
type env struct {
	cfg config.Config
	log *zap.Logger
	st  *store.Store
	svc *mutate.Service
}

func (e *env) Close() {
	if e == nil {
		return
	}
	_ = e.st.Close()
	_ = e.log.Sync()
}

// loadConfig resolves the config file and applies the global flags on top.
func loadConfig(app *App) (config.Config, error) {
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if d := strings.TrimSpace(app.Dir); d != "" {
		cfg.DataDir = d
	}
	if l := strings.TrimSpace(app.LogLevel); l != "" {
		cfg.Log.Level = l
	}
	return cfg, nil
}

// openEnv loads the config, builds the logger and opens the store.
// Logs go to stderr so stdout stays machine-readable.
func openEnv(cmd *cobra.Command, app *App) (*env, error) {
	cfg, err := loadConfig(app)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cmd.Context(), cfg.DataDir)
	if err != nil {
		return nil, err
	}
	svc := mutate.New(st, st, logging.Component(log, "mutate"))
	return &env{cfg: cfg, log: log, st: st, svc: svc}, nil
}

func (e *env) cliUser(ctx context.Context) (model.User, error) {
	return e.st.CLIUser(ctx)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), describeErr(err))
	return err
}

func requireArg(name, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", errors.New("missing " + name)
	}
	return v, nil
}
