package cmds

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rsadaphule/buildwatch/pkg/buildsrv"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo build server",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := buildsrv.New(cmd.Context(), buildsrv.Options{})
			log.Info().Str("addr", addr).Msg("build server listening")
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")
	return cmd
}
