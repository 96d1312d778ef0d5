package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ytsync/internal/config"
	"ytsync/internal/deps"
	"ytsync/internal/history"
	"ytsync/internal/services/ytdlp"
	"ytsync/internal/syncer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var playlistFlag string
	var locationFlag string
	var formatFlag string
	var savePlaylistFlag bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile remote playlists with their local directories",
		Long: `Reconcile every configured playlist, downloading items not yet
present locally. With --playlist, a single ad hoc target is synced
instead of the configured list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			targets, err := resolveTargets(ctx, cfg, out, playlistFlag, locationFlag, formatFlag, savePlaylistFlag)
			if err != nil || len(targets) == 0 {
				return err
			}

			missing := deps.MissingRequired(deps.CheckBinaries(deps.Requirements(cfg)))
			if len(missing) > 0 {
				return fmt.Errorf("missing required tools: %s (see `ytsync deps`)", strings.Join(missing, ", "))
			}

			if err := cfg.EnsureStateDir(); err != nil {
				return err
			}
			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another ytsync run is in progress (lock %s)", cfg.LockPath())
			}
			defer func() { _ = lock.Unlock() }()

			var store *history.Store
			if cfg.History.Enabled {
				store, err = history.Open(cfg.HistoryDBPath())
				if err != nil {
					logger.Warn("history store unavailable, continuing without it", "error", err)
				} else {
					defer store.Close()
				}
			}

			client, err := ytdlp.New(cfg.YtdlpBinary(), ytdlp.WithVerbose(ctx.verbose()))
			if err != nil {
				return err
			}

			opts := []syncer.Option{
				syncer.WithLogger(logger),
				syncer.WithResultHandler(func(result syncer.Result) {
					fmt.Fprintln(out, result.Summary())
					if store == nil {
						return
					}
					if _, err := store.RecordRun(cmd.Context(), history.Run{
						PlaylistID: result.PlaylistID,
						Location:   result.Location,
						Format:     string(targetFormat(targets, result.PlaylistID)),
						Total:      result.Total,
						Present:    result.Present,
						Fetched:    result.Fetched,
						Failed:     result.Failed,
						StartedAt:  result.StartedAt,
						FinishedAt: result.FinishedAt,
					}); err != nil {
						logger.Warn("record sync run", "error", err)
					}
				}),
			}
			if progress := newProgressFunc(ctx.verbose()); progress != nil {
				opts = append(opts, syncer.WithProgress(progress))
			}

			engine, err := syncer.New(client, opts...)
			if err != nil {
				return err
			}
			_, err = engine.Sync(cmd.Context(), targets)
			return err
		},
	}

	cmd.Flags().StringVarP(&playlistFlag, "playlist", "p", "", "Sync a single playlist id instead of the configured list")
	cmd.Flags().StringVarP(&locationFlag, "location", "l", "", "Local directory for --playlist (default: current directory)")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "audio", "Media format for --playlist: audio or video")
	cmd.Flags().BoolVarP(&savePlaylistFlag, "save-playlist", "s", false, "Write an m3u index for --playlist")

	return cmd
}

// resolveTargets picks the unit of work: an ad hoc target built from
// flags, or the configured playlist list. On first run without a config
// file a sample is written and no targets are returned.
func resolveTargets(ctx *commandContext, cfg *config.Config, out io.Writer, playlistID, location, format string, savePlaylist bool) ([]config.Target, error) {
	if playlistID != "" {
		mediaFormat, err := config.ParseMediaFormat(format)
		if err != nil {
			return nil, err
		}
		if location == "" {
			location, err = os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("resolve working directory: %w", err)
			}
		}
		expanded, err := config.ExpandPath(location)
		if err != nil {
			return nil, err
		}
		return []config.Target{{
			PlaylistID:   playlistID,
			Location:     expanded,
			Format:       mediaFormat,
			SavePlaylist: savePlaylist,
		}}, nil
	}

	if !ctx.configExists {
		if err := config.CreateSample(ctx.configPath); err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "Created default config at %s\n", ctx.configPath)
		fmt.Fprintln(out, "Edit it to add playlists, then run `ytsync sync` again.")
		return nil, nil
	}
	if len(cfg.Playlists) == 0 {
		fmt.Fprintf(out, "No playlists configured in %s\n", ctx.configPath)
		return nil, nil
	}
	return cfg.Playlists, nil
}

func targetFormat(targets []config.Target, playlistID string) config.MediaFormat {
	for _, target := range targets {
		if target.PlaylistID == playlistID {
			return target.Format
		}
	}
	return config.FormatVideo
}

// newProgressFunc returns a per-item progress callback rendering a
// terminal progress bar, or nil when stderr is not a TTY or verbose
// logging would interleave with it.
func newProgressFunc(verbose bool) func(done, total int) {
	if verbose || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	var bar *progressbar.ProgressBar
	return func(done, total int) {
		if bar == nil || done == 1 {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("reconciling"),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	}
}
