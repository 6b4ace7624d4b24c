package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rvallade/maha/internal/audio"
	"github.com/rvallade/maha/internal/errmsg"
)

var (
	playShuffle bool
	playVolume  float64
)

var playCmd = &cobra.Command{
	Use:   "play [path...]",
	Short: "Play the queue",
	Long: `Play the persisted queue from where it left off. With path arguments
the queue is replaced by those tracks first.

Playback runs until the queue ends or the process is interrupted.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playShuffle, "shuffle", false, "enable shuffle before starting")
	playCmd.Flags().Float64Var(&playVolume, "volume", -1, "playback volume (0.0-1.0, default from config)")
	rootCmd.AddCommand(playCmd)
}

// playbackFinished reports whether a state change means the queue has
// played out and the command should exit.
func playbackFinished(e audio.StateChange) bool {
	return e.Current == audio.StateStopped
}

func runPlay(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpInitialize, err))
	}
	defer st.Close()

	sess, err := loadSession(st)
	if err != nil {
		return err
	}

	ctrl := audio.NewController(audio.NewBeepAdapter(), sess, st, log)
	defer ctrl.Close()

	pb := cfg.GetPlaybackConfig()
	ctrl.SetAmplification(float64(pb.Amplification))
	if playVolume >= 0 && playVolume <= 1 {
		ctrl.SetVolume(playVolume)
	} else {
		ctrl.SetVolume(pb.Volume)
	}

	sub := ctrl.Subscribe()

	if len(args) > 0 {
		tracks, err := resolveTracks(st, args)
		if err != nil {
			return err
		}
		if err := ctrl.SetQueue(tracks, 0); err != nil {
			return errors.New(errmsg.Format(errmsg.OpPlaybackStart, err))
		}
	} else {
		if sess.IsEmpty() {
			fmt.Println("Queue is empty")
			return nil
		}
		if err := ctrl.Play(); err != nil {
			return errors.New(errmsg.Format(errmsg.OpPlaybackStart, err))
		}
	}

	if playShuffle && !sess.Shuffle() {
		if _, err := ctrl.ToggleShuffle(); err != nil {
			return errors.New(errmsg.Format(errmsg.OpSessionSave, err))
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			fmt.Println()
			return nil
		case e := <-sub.TrackChanged:
			if e.Current != nil {
				fmt.Printf("Playing %s\n", formatTrack(*e.Current))
			}
		case e := <-sub.StateChanged:
			if playbackFinished(e) {
				return nil
			}
		case e := <-sub.Error:
			fmt.Fprintln(os.Stderr, errmsg.FormatWith(errmsg.OpPlaybackStart, e.Path, e.Err))
		case <-sub.Done:
			return nil
		}
	}
}
