package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rvallade/maha/internal/errmsg"
	"github.com/rvallade/maha/internal/query"
)

var (
	searchGenres  []string
	searchArtists []string
	searchAlbums  []string
	searchYears   []int
	searchMinDur  time.Duration
	searchMaxDur  time.Duration
	searchSort    string
	searchDesc    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the library",
	Long: `Search the library by substring over title, artist, album and genre,
with optional filters and sorting.

Examples:
  maha search "lo-fi"
  maha search --genre Jazz --min-duration 3m --sort year --desc`,
	RunE: runSearch,
}

var searchHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	RunE:  runSearchHistory,
}

var searchHistoryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the search history",
	RunE:  runSearchHistoryClear,
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchGenres, "genre", nil, "filter by genre (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchArtists, "artist", nil, "filter by artist (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchAlbums, "album", nil, "filter by album (repeatable)")
	searchCmd.Flags().IntSliceVar(&searchYears, "year", nil, "filter by year (repeatable)")
	searchCmd.Flags().DurationVar(&searchMinDur, "min-duration", 0, "minimum track duration")
	searchCmd.Flags().DurationVar(&searchMaxDur, "max-duration", 0, "maximum track duration")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "sort by field (title, artist, album, genre, year, duration, rating, playcount, dateadded)")
	searchCmd.Flags().BoolVar(&searchDesc, "desc", false, "sort descending")

	searchHistoryCmd.AddCommand(searchHistoryClearCmd)
	searchCmd.AddCommand(searchHistoryCmd)
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	tracks, err := st.Catalog()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
	}

	queryText := strings.Join(args, " ")

	var filters *query.Filters
	if len(searchGenres) > 0 || len(searchArtists) > 0 || len(searchAlbums) > 0 ||
		len(searchYears) > 0 || searchMinDur > 0 || searchMaxDur > 0 {
		filters = &query.Filters{
			Genres:      searchGenres,
			Artists:     searchArtists,
			Albums:      searchAlbums,
			Years:       searchYears,
			MinDuration: searchMinDur,
			MaxDuration: searchMaxDur,
		}
	}

	results := query.Search(tracks, queryText, filters)

	if searchSort != "" {
		dir := query.Ascending
		if searchDesc {
			dir = query.Descending
		}
		results = query.Sort(results, query.SortField(searchSort), dir)
	}

	if strings.TrimSpace(queryText) != "" {
		if err := st.AddSearch(queryText); err != nil {
			log.Warn("recording search", zap.Error(err))
		}
	}

	for i, t := range results {
		fmt.Printf("%3d  %s\n", i+1, formatTrack(t))
	}
	fmt.Printf("%d tracks\n", len(results))
	return nil
}

func runSearchHistory(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	queries, err := st.SearchHistory()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpSearchHistoryLoad, err))
	}

	for _, q := range queries {
		fmt.Println(q)
	}
	return nil
}

func runSearchHistoryClear(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	if err := st.ClearSearchHistory(); err != nil {
		return errors.New(errmsg.Format(errmsg.OpSearchHistorySave, err))
	}
	fmt.Println("Search history cleared")
	return nil
}
