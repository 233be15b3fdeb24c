package cli

import (
	"errors"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mandalart/internal/logging"
	"mandalart/internal/web"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var baseURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web gallery, editor and admin pages",
		Example: strings.TrimSpace(`
# Serve on localhost
mandalart serve --addr 127.0.0.1:8080

# Behind a proxy: share links and OGP tags use the public origin
mandalart serve --addr :8080 --base-url https://mandalart.example
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer e.Close()

			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = e.cfg.Server.Addr
			}
			if listenAddr == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}
			public := strings.TrimSpace(baseURL)
			if public == "" {
				public = e.cfg.Server.BaseURL
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := web.NewServer(ctx, web.ServerConfig{
				Addr:          listenAddr,
				BaseURL:       public,
				AdminPassword: e.cfg.Server.AdminPassword,
				SessionTTL:    e.cfg.Server.SessionTTL,
				PageSize:      e.cfg.List.PageSize,
				Store:         e.st,
				Service:       e.svc,
				Logger:        logging.Component(e.log, "web"),
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			hints := []string{"open " + url}
			if e.cfg.Server.AdminPassword == "" {
				hints = append(hints, "set MANDALART_SERVER_ADMIN_PASSWORD to enable /admin")
			}
			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":       actualAddr,
					"url":        url,
					"base_url":   public,
					"dir":        e.cfg.DataDir,
					"started_at": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": hints,
			})

			e.log.Info("serving", zap.String("addr", actualAddr))
			if err := srv.Serve(ctx, ln); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config: server.addr)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public origin for share links (default from config: server.base_url)")
	return cmd
}
