package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/rvallade/maha/internal/catalog"
	"github.com/rvallade/maha/internal/errmsg"
	"github.com/rvallade/maha/internal/session"
	"github.com/rvallade/maha/internal/store"
)

var queueNext bool

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Manage the playback queue",
	Long:  `View and manage the persistent playback queue.`,
	RunE:  runQueueList,
}

var queueAddCmd = &cobra.Command{
	Use:   "add <path...>",
	Short: "Add tracks to the queue",
	Long: `Add library tracks to the end of the queue, or right after the
current track with --next.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQueueAdd,
}

var queueRemoveCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Remove a track from the queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueRemove,
}

var queueMoveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move a track in the queue",
	Args:  cobra.ExactArgs(2),
	RunE:  runQueueMove,
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the queue",
	RunE:  runQueueClear,
}

var queueShuffleCmd = &cobra.Command{
	Use:   "shuffle",
	Short: "Toggle shuffle mode",
	RunE:  runQueueShuffle,
}

var queueRepeatCmd = &cobra.Command{
	Use:   "repeat <none|one|all>",
	Short: "Set the repeat mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueRepeat,
}

var queueRateCmd = &cobra.Command{
	Use:   "rate <speed>",
	Short: "Set the playback speed",
	Long:  `Set the playback speed multiplier, e.g. 1.0 for normal or 1.5 for faster.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueRate,
}

func init() {
	queueAddCmd.Flags().BoolVar(&queueNext, "next", false, "insert after the current track")

	queueCmd.AddCommand(queueAddCmd)
	queueCmd.AddCommand(queueRemoveCmd)
	queueCmd.AddCommand(queueMoveCmd)
	queueCmd.AddCommand(queueClearCmd)
	queueCmd.AddCommand(queueShuffleCmd)
	queueCmd.AddCommand(queueRepeatCmd)
	queueCmd.AddCommand(queueRateCmd)
	rootCmd.AddCommand(queueCmd)
}

// loadSession restores the persisted playback session. Mutations on the
// returned session write back to the store as they happen.
func loadSession(st *store.Manager) (*session.Session, error) {
	snap, err := st.LoadSession()
	if err != nil {
		return nil, errors.New(errmsg.Format(errmsg.OpSessionLoad, err))
	}
	sess := session.New(st)
	sess.Restore(snap)
	return sess, nil
}

func runQueueList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	sess, err := loadSession(st)
	if err != nil {
		return err
	}

	tracks := sess.Tracks()
	if len(tracks) == 0 {
		fmt.Println("Queue is empty")
		return nil
	}

	for i, t := range tracks {
		marker := "   "
		if i == sess.CurrentIndex() {
			marker = " > "
		}
		fmt.Printf("%s%3d  %s\n", marker, i+1, formatTrack(t))
	}
	fmt.Printf("%d tracks, shuffle %s, repeat %s, speed %.2gx\n",
		len(tracks), onOff(sess.Shuffle()), sess.Repeat(), sess.PlaybackRate())
	return nil
}

func runQueueAdd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	tracks, err := resolveTracks(st, args)
	if err != nil {
		return err
	}

	sess, err := loadSession(st)
	if err != nil {
		return err
	}

	if queueNext {
		err = sess.InsertAfterCurrent(tracks...)
	} else {
		err = sess.Append(tracks...)
	}
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpQueueAdd, err))
	}

	fmt.Printf("Added %d tracks\n", len(tracks))
	return nil
}

func runQueueRemove(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	sess, err := loadSession(st)
	if err != nil {
		return err
	}

	removed, err := sess.RemoveAt(index)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpQueueRemove, err))
	}
	if !removed {
		return fmt.Errorf("no track at position %d", index+1)
	}
	return nil
}

func runQueueMove(cmd *cobra.Command, args []string) error {
	from, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	to, err := parseIndex(args[1])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	sess, err := loadSession(st)
	if err != nil {
		return err
	}

	moved, err := sess.Reorder(from, to)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpQueueMove, err))
	}
	if !moved {
		return fmt.Errorf("cannot move from %d to %d", from+1, to+1)
	}
	return nil
}

func runQueueClear(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	sess, err := loadSession(st)
	if err != nil {
		return err
	}

	if err := sess.Clear(); err != nil {
		return errors.New(errmsg.Format(errmsg.OpSessionSave, err))
	}
	fmt.Println("Queue cleared")
	return nil
}

func runQueueShuffle(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	sess, err := loadSession(st)
	if err != nil {
		return err
	}

	on, err := sess.ToggleShuffle()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpSessionSave, err))
	}
	fmt.Printf("Shuffle %s\n", onOff(on))
	return nil
}

func runQueueRepeat(cmd *cobra.Command, args []string) error {
	var mode session.RepeatMode
	switch strings.ToLower(args[0]) {
	case "none":
		mode = session.RepeatNone
	case "one":
		mode = session.RepeatOne
	case "all":
		mode = session.RepeatAll
	default:
		return fmt.Errorf("unknown repeat mode %q (use none, one or all)", args[0])
	}

	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	sess, err := loadSession(st)
	if err != nil {
		return err
	}

	if err := sess.SetRepeatMode(mode); err != nil {
		return errors.New(errmsg.Format(errmsg.OpSessionSave, err))
	}
	fmt.Printf("Repeat %s\n", mode)
	return nil
}

func runQueueRate(cmd *cobra.Command, args []string) error {
	rate, err := strconv.ParseFloat(args[0], 64)
	if err != nil || rate <= 0 {
		return fmt.Errorf("invalid speed %q", args[0])
	}

	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	sess, err := loadSession(st)
	if err != nil {
		return err
	}

	if err := sess.SetPlaybackRate(rate); err != nil {
		return errors.New(errmsg.Format(errmsg.OpSessionSave, err))
	}
	fmt.Printf("Speed %.2gx\n", rate)
	return nil
}

// resolveTracks maps the given paths to library tracks, preserving order.
func resolveTracks(st *store.Manager, paths []string) ([]catalog.Track, error) {
	all, err := st.Catalog()
	if err != nil {
		return nil, errors.New(errmsg.Format(errmsg.OpLibraryLoad, err))
	}
	byPath := lo.KeyBy(all, func(t catalog.Track) string { return t.Path })

	tracks := make([]catalog.Track, 0, len(paths))
	for _, path := range paths {
		t, ok := byPath[path]
		if !ok {
			return nil, fmt.Errorf("not in library: %s", path)
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// parseIndex converts a 1-based position argument to a 0-based index.
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q", arg)
	}
	return n - 1, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
