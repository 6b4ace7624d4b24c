package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rvallade/maha/internal/errmsg"
	"github.com/rvallade/maha/internal/query"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Inspect the library",
	RunE:  runLibrarySummary,
}

var libraryArtistsCmd = &cobra.Command{
	Use:   "artists",
	Short: "List distinct artists",
	RunE:  runDistinct(query.DistinctArtist),
}

var libraryAlbumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "List distinct albums",
	RunE:  runDistinct(query.DistinctAlbum),
}

var libraryGenresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List distinct genres",
	RunE:  runDistinct(query.DistinctGenre),
}

func init() {
	libraryCmd.AddCommand(libraryArtistsCmd)
	libraryCmd.AddCommand(libraryAlbumsCmd)
	libraryCmd.AddCommand(libraryGenresCmd)
	rootCmd.AddCommand(libraryCmd)
}

func runLibrarySummary(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	count, err := st.TrackCount()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
	}
	fmt.Printf("%d tracks\n", count)
	return nil
}

func runDistinct(field query.DistinctField) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpInitialize, err))
		}
		defer st.Close()

		tracks, err := st.Catalog()
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
		}

		for _, v := range query.DistinctValues(tracks, field) {
			fmt.Println(v)
		}
		return nil
	}
}
