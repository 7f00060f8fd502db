// Command faresctl drives the composer from the command line: it builds
// orders from YAML files against the ERP catalog and exports history.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ale3590/fares/internal/config"
	"github.com/ale3590/fares/internal/erpclient"
)

// Version and BuildDate are set at build time with -ldflags "-X main.Version=...".
var (
	Version   = "dev"
	BuildDate = "unknown"
)

type globalFlags struct {
	erpURL   string
	user     string
	password string
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "faresctl",
		Short:         "Compose orders and export history against the ERP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.erpURL, "erp", cfg.ERP.BaseURL, "ERP API base URL")
	root.PersistentFlags().StringVarP(&g.user, "user", "u", os.Getenv("FARES_USER"), "ERP username (FARES_USER)")
	root.PersistentFlags().StringVarP(&g.password, "password", "p", os.Getenv("FARES_PASSWORD"), "ERP password (FARES_PASSWORD)")

	root.AddCommand(newComposeCmd(cfg, g), newExportCmd(cfg, g), newVersionCmd())
	return root
}

// login returns an ERP client authenticated with the global credentials.
func (g *globalFlags) login(ctx context.Context, cfg *config.Config) (*erpclient.Client, error) {
	if g.user == "" || g.password == "" {
		return nil, fmt.Errorf("credentials required: use --user/--password or FARES_USER/FARES_PASSWORD")
	}
	c := erpclient.New(g.erpURL, erpclient.WithTimeout(cfg.ERP.Timeout))
	res, err := c.Login(ctx, g.user, g.password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return c.WithToken(res.Token), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "faresctl %s (built %s, %s)\n", Version, BuildDate, runtime.Version())
		},
	}
}
