package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ytsync/internal/config"
)

func newPlaylistsCommand(ctx *commandContext) *cobra.Command {
	playlistsCmd := &cobra.Command{
		Use:   "playlists",
		Short: "Manage the configured sync targets",
	}

	playlistsCmd.AddCommand(newPlaylistsListCommand(ctx))
	playlistsCmd.AddCommand(newPlaylistsAddCommand(ctx))
	playlistsCmd.AddCommand(newPlaylistsRemoveCommand(ctx))

	return playlistsCmd
}

func newPlaylistsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured playlists",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(cfg.Playlists) == 0 {
				fmt.Fprintf(out, "No playlists configured in %s\n", ctx.configPath)
				return nil
			}

			rows := make([][]string, 0, len(cfg.Playlists))
			for _, target := range cfg.Playlists {
				rows = append(rows, []string{
					target.PlaylistID,
					target.Location,
					string(target.Format),
					yesNo(target.SavePlaylist),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Playlist", "Location", "Format", "Index"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newPlaylistsAddCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var savePlaylistFlag bool

	cmd := &cobra.Command{
		Use:   "add <playlist-id> <location>",
		Short: "Add a playlist to the configuration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			mediaFormat, err := config.ParseMediaFormat(formatFlag)
			if err != nil {
				return err
			}
			location, err := config.ExpandPath(args[1])
			if err != nil {
				return err
			}

			playlistID := args[0]
			for _, target := range cfg.Playlists {
				if target.PlaylistID == playlistID && target.Location == location {
					return fmt.Errorf("playlist %s is already configured for %s", playlistID, location)
				}
			}

			cfg.Playlists = append(cfg.Playlists, config.Target{
				PlaylistID:   playlistID,
				Location:     location,
				Format:       mediaFormat,
				SavePlaylist: savePlaylistFlag,
			})
			if err := config.Save(cfg, ctx.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added playlist %s -> %s (%s)\n", playlistID, location, mediaFormat)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "audio", "Media format: audio or video")
	cmd.Flags().BoolVarP(&savePlaylistFlag, "save-playlist", "s", false, "Write an m3u index for this playlist")
	return cmd
}

func newPlaylistsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <playlist-id>",
		Short: "Remove a playlist from the configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			playlistID := args[0]
			kept := cfg.Playlists[:0]
			removed := 0
			for _, target := range cfg.Playlists {
				if target.PlaylistID == playlistID {
					removed++
					continue
				}
				kept = append(kept, target)
			}
			if removed == 0 {
				return fmt.Errorf("playlist %s is not configured", playlistID)
			}
			cfg.Playlists = kept

			if err := config.Save(cfg, ctx.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed playlist %s\n", playlistID)
			return nil
		},
	}
}
