package cmds

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rsadaphule/buildwatch/pkg/client"
	"github.com/rsadaphule/buildwatch/pkg/config"
)

const defaultServerURL = "http://127.0.0.1:8000"

type rootOptions struct {
	ServerURL string
	Timeout   time.Duration
}

func AddRootFlags(root *cobra.Command) {
	root.PersistentFlags().String("server", "", "Build server base URL (defaults to config, then "+defaultServerURL+")")
	root.PersistentFlags().String("config", "", "Path to config file (defaults to .buildwatch.yaml in the working directory)")
	root.PersistentFlags().Duration("timeout", 10*time.Second, "Timeout for the build-start request")
}

func getRootOptions(cmd *cobra.Command) (rootOptions, error) {
	cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return rootOptions{}, err
	}
	if cfgPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return rootOptions{}, err
		}
		cfgPath = config.DefaultPath(cwd)
	}
	cfg, err := config.LoadOptional(cfgPath)
	if err != nil {
		return rootOptions{}, err
	}

	server, err := cmd.Root().PersistentFlags().GetString("server")
	if err != nil {
		return rootOptions{}, err
	}
	if server == "" {
		server = cfg.ServerURL
	}
	if server == "" {
		server = defaultServerURL
	}

	timeout, err := cmd.Root().PersistentFlags().GetDuration("timeout")
	if err != nil {
		return rootOptions{}, err
	}
	if !cmd.Root().PersistentFlags().Changed("timeout") && cfg.TriggerTimeout > 0 {
		timeout = time.Duration(cfg.TriggerTimeout)
	}
	if timeout <= 0 {
		return rootOptions{}, errors.New("timeout must be > 0")
	}

	return rootOptions{ServerURL: server, Timeout: timeout}, nil
}

func newClient(opts rootOptions) (*client.Client, error) {
	return client.New(client.Options{BaseURL: opts.ServerURL})
}
