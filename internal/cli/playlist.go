package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rvallade/maha/internal/errmsg"
	"github.com/rvallade/maha/internal/playlistfile"
	"github.com/rvallade/maha/internal/playlists"
	"github.com/rvallade/maha/internal/query"
)

var (
	playlistDescription string
	playlistCriteria    string
	playlistFormat      string
	playlistOutput      string
	playlistImportName  string
)

var playlistCmd = &cobra.Command{
	Use:     "playlist",
	Aliases: []string{"pl"},
	Short:   "Manage playlists",
	RunE:    runPlaylistList,
}

var playlistCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a playlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistCreate,
}

var playlistSmartCmd = &cobra.Command{
	Use:   "smart <name> --criteria <json>",
	Short: "Create a smart playlist",
	Long: `Create a smart playlist from match criteria. The criteria are applied
once at creation; use refresh to re-evaluate them later.

Example:
  maha playlist smart "Jazz favorites" --criteria '{"genres":["Jazz"],"min_rating":4}'`,
	Args: cobra.ExactArgs(1),
	RunE: runPlaylistSmart,
}

var playlistRefreshCmd = &cobra.Command{
	Use:   "refresh <name>",
	Short: "Re-evaluate a smart playlist's criteria",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistRefresh,
}

var playlistShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a playlist's tracks",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistShow,
}

var playlistRenameCmd = &cobra.Command{
	Use:   "rename <name> <new-name>",
	Short: "Rename a playlist",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlaylistRename,
}

var playlistDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a playlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistDelete,
}

var playlistAddCmd = &cobra.Command{
	Use:   "add <name> <path...>",
	Short: "Add tracks to a playlist",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPlaylistAdd,
}

var playlistRemoveCmd = &cobra.Command{
	Use:   "remove <name> <path>",
	Short: "Remove a track from a playlist",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlaylistRemove,
}

var playlistMoveCmd = &cobra.Command{
	Use:   "move <name> <from> <to>",
	Short: "Move a track within a playlist",
	Args:  cobra.ExactArgs(3),
	RunE:  runPlaylistMove,
}

var playlistExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Export a playlist to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistExport,
}

var playlistImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a playlist from a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistImport,
}

func init() {
	playlistCreateCmd.Flags().StringVar(&playlistDescription, "description", "", "playlist description")
	playlistSmartCmd.Flags().StringVar(&playlistCriteria, "criteria", "", "match criteria as JSON")
	_ = playlistSmartCmd.MarkFlagRequired("criteria")
	playlistExportCmd.Flags().StringVar(&playlistFormat, "format", "m3u", "export format (m3u or pls)")
	playlistExportCmd.Flags().StringVarP(&playlistOutput, "output", "o", "", "output file (default: stdout)")
	playlistImportCmd.Flags().StringVar(&playlistImportName, "name", "", "playlist name (default: file name)")

	playlistCmd.AddCommand(playlistCreateCmd)
	playlistCmd.AddCommand(playlistSmartCmd)
	playlistCmd.AddCommand(playlistRefreshCmd)
	playlistCmd.AddCommand(playlistShowCmd)
	playlistCmd.AddCommand(playlistRenameCmd)
	playlistCmd.AddCommand(playlistDeleteCmd)
	playlistCmd.AddCommand(playlistAddCmd)
	playlistCmd.AddCommand(playlistRemoveCmd)
	playlistCmd.AddCommand(playlistMoveCmd)
	playlistCmd.AddCommand(playlistExportCmd)
	playlistCmd.AddCommand(playlistImportCmd)
	rootCmd.AddCommand(playlistCmd)
}

// findPlaylist resolves a playlist by exact name, falling back to ID.
func findPlaylist(p *playlists.Playlists, ref string) (*playlists.Playlist, error) {
	all, err := p.All()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Name == ref || all[i].ID == ref {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("no playlist named %q", ref)
}

func runPlaylistList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	all, err := playlists.New(st.DB()).All()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Println("No playlists")
		return nil
	}
	for _, pl := range all {
		kind := ""
		if pl.IsSmart {
			kind = " (smart)"
		}
		fmt.Printf("%s%s  %d tracks\n", pl.Name, kind, len(pl.Tracks))
	}
	return nil
}

func runPlaylistCreate(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	pl, err := playlists.New(st.DB()).Create(args[0], playlistDescription)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaylistCreate, args[0], err))
	}
	fmt.Printf("Created playlist %q\n", pl.Name)
	return nil
}

func runPlaylistSmart(cmd *cobra.Command, args []string) error {
	var criteria query.SmartCriteria
	if err := json.Unmarshal([]byte(playlistCriteria), &criteria); err != nil {
		return fmt.Errorf("invalid criteria: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	tracks, err := st.Catalog()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
	}

	pl, err := playlists.New(st.DB()).GenerateSmart(args[0], criteria, tracks)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaylistCreate, args[0], err))
	}
	fmt.Printf("Created smart playlist %q with %d tracks\n", pl.Name, len(pl.Tracks))
	return nil
}

func runPlaylistRefresh(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	p := playlists.New(st.DB())
	pl, err := findPlaylist(p, args[0])
	if err != nil {
		return err
	}

	tracks, err := st.Catalog()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
	}

	if err := p.RefreshSmart(pl.ID, tracks); err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaylistRefresh, pl.Name, err))
	}
	fmt.Printf("Refreshed %q\n", pl.Name)
	return nil
}

func runPlaylistShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	pl, err := findPlaylist(playlists.New(st.DB()), args[0])
	if err != nil {
		return err
	}

	tracks, err := st.Catalog()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
	}
	byPath := make(map[string]string, len(tracks))
	for _, t := range tracks {
		byPath[t.Path] = formatTrack(t)
	}

	for i, path := range pl.Tracks {
		line, ok := byPath[path]
		if !ok {
			line = path + "  (missing)"
		}
		fmt.Printf("%3d  %s\n", i+1, line)
	}
	fmt.Printf("%d tracks\n", len(pl.Tracks))
	return nil
}

func runPlaylistRename(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	p := playlists.New(st.DB())
	pl, err := findPlaylist(p, args[0])
	if err != nil {
		return err
	}
	if err := p.Rename(pl.ID, args[1]); err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaylistRename, pl.Name, err))
	}
	return nil
}

func runPlaylistDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	p := playlists.New(st.DB())
	pl, err := findPlaylist(p, args[0])
	if err != nil {
		return err
	}
	if err := p.Delete(pl.ID); err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaylistDelete, pl.Name, err))
	}
	return nil
}

func runPlaylistAdd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	p := playlists.New(st.DB())
	pl, err := findPlaylist(p, args[0])
	if err != nil {
		return err
	}

	tracks, err := resolveTracks(st, args[1:])
	if err != nil {
		return err
	}
	paths := make([]string, len(tracks))
	for i, t := range tracks {
		paths[i] = t.Path
	}

	if err := p.AddTracks(pl.ID, paths); err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaylistAddTrack, pl.Name, err))
	}
	return nil
}

func runPlaylistRemove(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	p := playlists.New(st.DB())
	pl, err := findPlaylist(p, args[0])
	if err != nil {
		return err
	}
	if err := p.RemoveTrack(pl.ID, args[1]); err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaylistRemove, pl.Name, err))
	}
	return nil
}

func runPlaylistMove(cmd *cobra.Command, args []string) error {
	from, err := parseIndex(args[1])
	if err != nil {
		return err
	}
	to, err := parseIndex(args[2])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	p := playlists.New(st.DB())
	pl, err := findPlaylist(p, args[0])
	if err != nil {
		return err
	}
	if err := p.Reorder(pl.ID, from, to); err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaylistMove, pl.Name, err))
	}
	return nil
}

func runPlaylistExport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	pl, err := findPlaylist(playlists.New(st.DB()), args[0])
	if err != nil {
		return err
	}

	tracks, err := st.Catalog()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
	}

	var content string
	switch strings.ToLower(playlistFormat) {
	case "m3u":
		content = playlistfile.ExportExtended(*pl, tracks)
	case "pls":
		content = playlistfile.ExportIndexed(*pl, tracks)
	default:
		return fmt.Errorf("unknown format %q (use m3u or pls)", playlistFormat)
	}

	if playlistOutput == "" {
		fmt.Println(content)
		return nil
	}
	if err := os.WriteFile(playlistOutput, []byte(content+"\n"), 0o644); err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaylistExport, pl.Name, err))
	}
	fmt.Printf("Exported %q to %s\n", pl.Name, playlistOutput)
	return nil
}

func runPlaylistImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaylistImport, args[0], err))
	}
	paths := playlistfile.Import(string(data))
	if len(paths) == 0 {
		return fmt.Errorf("no tracks found in %s", args[0])
	}

	name := playlistImportName
	if name == "" {
		name = playlistNameFromFile(args[0])
	}

	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	p := playlists.New(st.DB())
	pl, err := p.Create(name, "")
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaylistCreate, name, err))
	}
	if err := p.AddTracks(pl.ID, paths); err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpPlaylistImport, name, err))
	}
	fmt.Printf("Imported %d tracks into %q\n", len(paths), name)
	return nil
}

func playlistNameFromFile(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
