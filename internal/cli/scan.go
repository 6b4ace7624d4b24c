package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/rvallade/maha/internal/catalog"
	"github.com/rvallade/maha/internal/errmsg"
)

var scanCmd = &cobra.Command{
	Use:   "scan [folder...]",
	Short: "Scan folders and rebuild the library",
	Long: `Scan the given folders for music files and replace the library contents.
Without arguments the library_sources from the config file are scanned.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	folders := args
	if len(folders) == 0 {
		folders = cfg.LibrarySources
	}
	if len(folders) == 0 {
		return errors.New("no folders to scan: pass folders as arguments or set library_sources in the config file")
	}

	scanner := catalog.NewScanner(log)

	var all []catalog.Track
	skipped := 0
	untagged := 0
	for _, folder := range folders {
		res, err := scanner.Scan(cmd.Context(), folder)
		if err != nil {
			return errors.New(errmsg.FormatWith(errmsg.OpLibraryScan, folder, err))
		}
		all = append(all, res.Tracks...)
		skipped += res.Skipped
		untagged += res.Untagged
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Path < all[j].Path })

	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	if err := st.ReplaceCatalog(all); err != nil {
		return errors.New(errmsg.Format(errmsg.OpLibrarySave, err))
	}

	fmt.Printf("Scanned %d tracks (%d skipped, %d untagged)\n", len(all), skipped, untagged)
	return nil
}
