package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rvallade/maha/internal/errmsg"
	"github.com/rvallade/maha/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show listening statistics",
	RunE:  runStats,
}

var statsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear listening statistics",
	RunE:  runStatsClear,
}

func init() {
	statsCmd.AddCommand(statsClearCmd)
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	tracks, err := st.Catalog()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
	}

	summary, err := stats.Summarize(st, tracks)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpStatsLoad, err))
	}

	fmt.Printf("Library: %s\n", humanize.Comma(int64(summary.TotalTracks))+" tracks")
	fmt.Printf("Total play time: %s\n", summary.TotalPlayTime.Round(time.Second))
	fmt.Println()

	if len(summary.TopTracks) > 0 {
		fmt.Println("Top tracks:")
		for i, t := range summary.TopTracks {
			fmt.Printf("%3d  %s (%d plays)\n", i+1, formatTrack(t.Track), t.PlayCount)
		}
		fmt.Println()
	}

	if len(summary.TopArtists) > 0 {
		fmt.Println("Top artists:")
		for i, a := range summary.TopArtists {
			fmt.Printf("%3d  %s (%d plays)\n", i+1, a.Artist, a.PlayCount)
		}
		fmt.Println()
	}

	if len(summary.TopGenres) > 0 {
		fmt.Println("Top genres:")
		for i, g := range summary.TopGenres {
			fmt.Printf("%3d  %s (%d plays)\n", i+1, g.Genre, g.PlayCount)
		}
		fmt.Println()
	}

	if len(summary.RecentlyPlayed) > 0 {
		fmt.Println("Recently played:")
		for _, h := range summary.RecentlyPlayed {
			fmt.Printf("  %s  (%s)\n", formatTrack(h.Track), humanize.Time(h.PlayedAt))
		}
	}
	return nil
}

func runStatsClear(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	if err := st.ClearStats(); err != nil {
		return errors.New(errmsg.Format(errmsg.OpStatsClear, err))
	}
	fmt.Println("Listening stats cleared")
	return nil
}
