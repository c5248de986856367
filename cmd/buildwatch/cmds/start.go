package cmds

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rsadaphule/buildwatch/pkg/client"
)

func newStartCmd() *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Trigger a build and print its id, optionally following its log",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := getRootOptions(cmd)
			if err != nil {
				return err
			}
			svc, err := newClient(opts)
			if err != nil {
				return err
			}

			triggerCtx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			buildID, err := svc.StartBuild(triggerCtx)
			cancel()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "build_id=%s\n", buildID)

			if !follow {
				return nil
			}

			logs, err := svc.FollowLogs(cmd.Context(), buildID)
			if err != nil {
				return err
			}
			for ev := range logs {
				switch ev.Kind {
				case client.EventLine:
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), ev.Line)
				case client.EventDone:
					return nil
				case client.EventFailed:
					if ev.Err != nil {
						return ev.Err
					}
					return errors.New("log stream failed")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream log lines until the build finishes")
	return cmd
}
