package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/tickfewer/internal/config"
	"github.com/teemow/tickfewer/internal/instrumentation"
	"github.com/teemow/tickfewer/internal/logging"
	"github.com/teemow/tickfewer/internal/unified"
)

func newVerifyCmd() *cobra.Command {
	var (
		src       configSource
		debugMode bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the credentials of both TickTick APIs",
		Long: `Sign on to both TickTick APIs with the configured credentials and report
whether each of them answers. The command fails unless both do.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("config") {
				src.path = os.Getenv(config.EnvConfigFile)
			}
			src.timeoutSet = cmd.Flags().Changed("timeout")

			cfg, err := loadConfig(src)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			adapter := logging.NewSlogAdapter(newLogger(debugMode))
			api := unified.New(cfg.Unified(adapter), unified.WithLogger(adapter))
			defer func() { _ = api.Close() }()

			return runVerify(ctx, cmd.OutOrStdout(), api)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	addConfigFlags(cmd, &src)

	return cmd
}

// runVerify initializes api and writes one line per upstream to w.
func runVerify(ctx context.Context, w io.Writer, api *unified.API) error {
	if err := api.Initialize(ctx); err != nil {
		fmt.Fprintf(w, "TickTick APIs: not usable\n  %v\n", err)
		return fmt.Errorf("verification failed")
	}

	verified := api.Router().VerifyClients(ctx)
	ok := true
	for _, up := range []struct{ key, name string }{
		{instrumentation.UpstreamV1, "Open API (v1)"},
		{instrumentation.UpstreamV2, "Private API (v2)"},
	} {
		status := "ok"
		if !verified[up.key] {
			status = "failed"
			ok = false
		}
		fmt.Fprintf(w, "%-17s %s\n", up.name+":", status)
	}

	if inbox := api.InboxID(); inbox != "" {
		fmt.Fprintf(w, "%-17s %s\n", "Inbox:", inbox)
	}

	if !ok {
		return fmt.Errorf("verification failed")
	}
	return nil
}
