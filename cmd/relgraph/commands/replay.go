package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"relgraph/internal/codec"
	"relgraph/internal/hub"
	"relgraph/internal/logger"
	"relgraph/internal/replay"
	"relgraph/internal/watcher"
)

func newReplayCmd() *cobra.Command {
	var (
		inFormat  string
		outFormat string
		watch     bool
		events    bool
	)

	cmd := &cobra.Command{
		Use:   "replay <script>",
		Short: "Apply a script and print the resulting relationship data",
		Long: `Replay a JSON or YAML script of push, add, remove, replace, unload,
rollback, commit, delete and batch steps, then print a snapshot of every
relationship together with the notifications that fired.

With --watch the script is replayed against a fresh graph whenever the script
or the schema file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			format := inFormat
			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(path), ".")
			}
			in, err := codec.ForFormat(format)
			if err != nil {
				return err
			}
			out, err := codec.ForFormat(outFormat)
			if err != nil {
				return err
			}

			replayOnce := func() (*app, error) {
				a, err := newApp(cmd.ErrOrStderr())
				if err != nil {
					return nil, err
				}
				defer a.close()
				return a, a.replay(path, in, out, cmd.OutOrStdout(), events)
			}

			a, err := replayOnce()
			if !watch || a == nil {
				return err
			}
			if err != nil {
				a.log.Error("replay failed", logger.Error(err))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := watcher.New([]string{path, a.schemaPath}, watcher.WithLogger(a.log))
			if err != nil {
				return err
			}
			defer w.Close()

			err = w.Run(ctx, func(string) {
				if _, err := replayOnce(); err != nil {
					a.log.Error("replay failed", logger.Error(err))
				}
			})
			if errors.Is(err, ctx.Err()) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&inFormat, "in", "", "script format: json or yaml (default: from extension)")
	cmd.Flags().StringVarP(&outFormat, "out", "o", "json", "snapshot format: json or yaml")
	cmd.Flags().BoolVar(&events, "events", false, "log each notification as it is dispatched")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "replay again when the script or schema changes")
	return cmd
}

// replay parses the script at path, applies it to the app's store and writes
// the resulting snapshot to w
func (a *app) replay(path string, in, out codec.Codec, w io.Writer, events bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	script, err := in.Parse(f)
	if err != nil {
		return err
	}

	if events {
		stop := a.streamNotifications()
		defer stop()
	}

	runner := replay.New(a.store)
	defer runner.Close()
	if err := runner.Run(script); err != nil {
		return err
	}
	a.log.Debug("script replayed", "steps", len(script.Steps), "notifications", len(runner.Notifications()))

	snap, err := runner.Snapshot()
	if err != nil {
		return err
	}
	return out.Export(snap, w)
}

// streamNotifications logs notifications from a buffered channel subscriber
// until the returned func is called
func (a *app) streamNotifications() func() {
	ch := make(chan hub.Notification, a.cfg.Notifications.Buffer)
	unsubscribe := a.store.Hub().SubscribeChan(ch)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for n := range ch {
			a.log.Info("notification", "identifier", n.Identifier.String(), "bucket", n.Bucket, "key", n.Key)
		}
	}()
	return func() {
		unsubscribe()
		close(ch)
		<-done
		if dropped := a.store.Hub().Dropped(); dropped > 0 {
			a.log.Warn("notifications dropped", "count", dropped)
		}
	}
}
