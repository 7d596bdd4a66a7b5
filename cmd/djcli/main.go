// Package main provides the DJ CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	apiconnect "github.com/osa030/vibebox/internal/api/connect"
	"github.com/osa030/vibebox/internal/app/dj"
	"github.com/osa030/vibebox/internal/domain/track"
)

var (
	app    = kingpin.New("vibebox-djcli", "vibebox virtual DJ client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Admin token (or set ADMIN_TOKEN env)").Envar("ADMIN_TOKEN").String()

	// session commands
	startCmd   = app.Command("start", "Start a session seeded with a track")
	startTrack = trackFlags(startCmd)

	modeCmd = app.Command("mode", "Start a session from a DJ mode, or switch modes")
	modeID  = modeCmd.Arg("mode-id", "Mode ID (see 'modes')").Required().String()
	modeSet = modeCmd.Flag("switch", "Switch the running session instead of starting a new one").Bool()

	stopCmd    = app.Command("stop", "Stop the session")
	statusCmd  = app.Command("status", "Show the session and playback status")
	nextCmd    = app.Command("next", "Show the next track")
	historyCmd = app.Command("history", "Show played tracks, the upcoming tracks and the mode")

	addCmd   = app.Command("add", "Put a track at the front of the queue")
	addTrack = trackFlags(addCmd)

	addRefCmd = app.Command("add-spotify", "Put a Spotify track at the front of the queue")
	addRef    = addRefCmd.Arg("ref", "Spotify track URL, URI or ID").Required().String()

	removeCmd = app.Command("remove", "Remove a track from the queue")
	removeID  = removeCmd.Arg("track-id", "Track ID").Required().Int64()

	toggleCmd = app.Command("toggle", "Toggle auto-queue")
	clearCmd  = app.Command("clear", "Clear played history")

	modesCmd      = app.Command("modes", "List DJ modes")
	modesLanguage = modesCmd.Flag("language", "Only modes for this language").String()

	watchCmd = app.Command("watch", "Stream session state changes")

	// playback commands
	playCmd   = app.Command("play", "Start or resume playback")
	pauseCmd  = app.Command("pause", "Pause playback")
	resumeCmd = app.Command("resume", "Resume playback")
	skipCmd   = app.Command("skip", "Skip to the next track")
	replayCmd = app.Command("replay", "Restart the current track")

	volumeCmd   = app.Command("volume", "Set the playback volume")
	volumeLevel = volumeCmd.Arg("level", "Volume between 0 and 1").Required().Float64()

	seekCmd      = app.Command("seek", "Move within the current track")
	seekPosition = seekCmd.Arg("seconds", "Position in seconds").Required().Float64()

	autoCmd     = app.Command("auto", "Turn automatic advancing on or off")
	autoEnabled = autoCmd.Arg("enabled", "on or off").Required().Enum("on", "off")

	settingsCmd      = app.Command("settings", "Change transition settings")
	settingsDuration = settingsCmd.Flag("duration", "Crossfade duration in seconds").Float64()
	settingsGap      = settingsCmd.Flag("gap", "Gap before a cut in seconds").Float64()
	settingsCurve    = settingsCmd.Flag("curve", "Volume curve").Enum("linear", "exponential", "smooth")
	settingsType     = settingsCmd.Flag("type", "Transition type").Enum("crossfade", "cut", "beatmatch")

	eventsCmd = app.Command("events", "Stream playback events")
)

// trackArgs are the flags describing a track on the command line.
type trackArgs struct {
	id         *int64
	name       *string
	artist     *string
	preview    *string
	genre      *string
	country    *string
	durationMs *int64
}

func trackFlags(cmd *kingpin.CmdClause) trackArgs {
	return trackArgs{
		id:         cmd.Flag("id", "Track ID").Required().Int64(),
		name:       cmd.Flag("name", "Track name").Required().String(),
		artist:     cmd.Flag("artist", "Artist name").Required().String(),
		preview:    cmd.Flag("preview", "Preview URL").Required().String(),
		genre:      cmd.Flag("genre", "Primary genre").String(),
		country:    cmd.Flag("country", "Country code").String(),
		durationMs: cmd.Flag("duration-ms", "Track length in milliseconds").Int64(),
	}
}

func (a trackArgs) track() track.Track {
	return track.Track{
		ID:         *a.id,
		Name:       *a.name,
		ArtistName: *a.artist,
		PreviewURL: *a.preview,
		Genre:      *a.genre,
		Country:    *a.country,
		DurationMs: *a.durationMs,
	}
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := apiconnect.NewClient(http.DefaultClient, *server, *token)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, client, command); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func execute(ctx context.Context, client *apiconnect.Client, command string) error {
	switch command {
	case startCmd.FullCommand():
		return callState(ctx, client, apiconnect.DJServiceStartSessionProcedure, apiconnect.TrackRequest{Track: startTrack.track()})
	case modeCmd.FullCommand():
		procedure := apiconnect.DJServiceStartSessionWithModeProcedure
		if *modeSet {
			procedure = apiconnect.DJServiceSetModeProcedure
		}
		return callState(ctx, client, procedure, apiconnect.ModeRequest{ModeID: *modeID})
	case stopCmd.FullCommand():
		return callState(ctx, client, apiconnect.DJServiceStopSessionProcedure, nil)
	case statusCmd.FullCommand():
		return status(ctx, client)
	case nextCmd.FullCommand():
		var out apiconnect.NextTrackResponse
		if err := client.Call(ctx, apiconnect.DJServiceNextTrackProcedure, nil, &out); err != nil {
			return err
		}
		if out.Track == nil {
			fmt.Println("Queue is empty")
			return nil
		}
		fmt.Printf("Next: %s\n", formatTrack(*out.Track))
		return nil
	case historyCmd.FullCommand():
		var out apiconnect.HistoryResponse
		if err := client.Call(ctx, apiconnect.DJServiceGetHistoryProcedure, nil, &out); err != nil {
			return err
		}
		if out.Mode != nil {
			fmt.Printf("Mode: %s (%s)\n", out.Mode.Name, out.Mode.ID)
		}
		fmt.Printf("Played (%d):\n", len(out.Played))
		for i, t := range out.Played {
			fmt.Printf("  %2d. %s\n", i+1, formatTrack(t))
		}
		fmt.Printf("Up next (%d):\n", len(out.Next))
		for i, t := range out.Next {
			fmt.Printf("  %2d. %s\n", i+1, formatTrack(t))
		}
		return nil
	case addCmd.FullCommand():
		return callQueue(ctx, client, apiconnect.DJServiceAddToQueueProcedure, apiconnect.AddToQueueRequest{Track: addTrack.track()})
	case addRefCmd.FullCommand():
		return callQueue(ctx, client, apiconnect.DJServiceAddToQueueProcedure, apiconnect.AddToQueueRequest{Ref: *addRef})
	case removeCmd.FullCommand():
		return callQueue(ctx, client, apiconnect.DJServiceRemoveFromQueueProcedure, apiconnect.TrackIDRequest{TrackID: *removeID})
	case toggleCmd.FullCommand():
		var out apiconnect.AutoQueueResponse
		if err := client.Call(ctx, apiconnect.DJServiceToggleAutoQueueProcedure, nil, &out); err != nil {
			return err
		}
		fmt.Printf("Auto-queue: %s\n", onOff(out.AutoQueue))
		return nil
	case clearCmd.FullCommand():
		if err := client.Call(ctx, apiconnect.DJServiceClearHistoryProcedure, nil, nil); err != nil {
			return err
		}
		fmt.Println("History cleared")
		return nil
	case modesCmd.FullCommand():
		return listModes(ctx, client)
	case watchCmd.FullCommand():
		return client.Watch(ctx, apiconnect.DJServiceWatchStateProcedure, nil, printState)

	case playCmd.FullCommand():
		return callStatus(ctx, client, apiconnect.PlayerServicePlayProcedure, nil)
	case pauseCmd.FullCommand():
		return callStatus(ctx, client, apiconnect.PlayerServicePauseProcedure, nil)
	case resumeCmd.FullCommand():
		return callStatus(ctx, client, apiconnect.PlayerServiceResumeProcedure, nil)
	case skipCmd.FullCommand():
		return callStatus(ctx, client, apiconnect.PlayerServiceSkipProcedure, nil)
	case replayCmd.FullCommand():
		return callStatus(ctx, client, apiconnect.PlayerServiceReplayProcedure, nil)
	case volumeCmd.FullCommand():
		return callStatus(ctx, client, apiconnect.PlayerServiceSetVolumeProcedure, apiconnect.VolumeRequest{Volume: *volumeLevel})
	case seekCmd.FullCommand():
		return callStatus(ctx, client, apiconnect.PlayerServiceSeekProcedure, apiconnect.SeekRequest{Position: *seekPosition})
	case autoCmd.FullCommand():
		return callStatus(ctx, client, apiconnect.PlayerServiceSetAutoPlayNextProcedure, apiconnect.AutoPlayNextRequest{Enabled: *autoEnabled == "on"})
	case settingsCmd.FullCommand():
		return callStatus(ctx, client, apiconnect.PlayerServiceUpdateSettingsProcedure, settingsRequest())
	case eventsCmd.FullCommand():
		return client.Watch(ctx, apiconnect.PlayerServiceWatchEventsProcedure, nil, printEvent)
	}
	return fmt.Errorf("unknown command: %s", command)
}

// settingsRequest holds only the settings given on the command line, so the
// server keeps the others.
func settingsRequest() map[string]any {
	in := make(map[string]any)
	if *settingsDuration > 0 {
		in["crossfadeDuration"] = *settingsDuration
	}
	if *settingsGap > 0 {
		in["gapDuration"] = *settingsGap
	}
	if *settingsCurve != "" {
		in["volumeCurve"] = *settingsCurve
	}
	if *settingsType != "" {
		in["transitionType"] = *settingsType
	}
	return in
}

func callState(ctx context.Context, client *apiconnect.Client, procedure string, in any) error {
	var state dj.State
	if err := client.Call(ctx, procedure, in, &state); err != nil {
		return err
	}
	printSession(state)
	return nil
}

func callQueue(ctx context.Context, client *apiconnect.Client, procedure string, in any) error {
	var status dj.QueueStatus
	if err := client.Call(ctx, procedure, in, &status); err != nil {
		return err
	}
	fmt.Printf("Queue: next=%d played=%d\n", status.NextCount, status.PlayedCount)
	return nil
}

func callStatus(ctx context.Context, client *apiconnect.Client, procedure string, in any) error {
	out, err := callRaw(ctx, client, procedure, in)
	if err != nil {
		return err
	}
	printPlayback(out)
	return nil
}

// callRaw returns the response as a plain map, for messages the CLI only prints.
func callRaw(ctx context.Context, client *apiconnect.Client, procedure string, in any) (map[string]any, error) {
	out := make(map[string]any)
	if err := client.Call(ctx, procedure, in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func status(ctx context.Context, client *apiconnect.Client) error {
	var state dj.State
	if err := client.Call(ctx, apiconnect.DJServiceGetStateProcedure, nil, &state); err != nil {
		return err
	}
	playback, err := callRaw(ctx, client, apiconnect.PlayerServiceGetStatusProcedure, nil)
	if err != nil {
		return err
	}

	fmt.Println("\n=== SESSION ===")
	printSession(state)
	fmt.Println("\n=== PLAYBACK ===")
	printPlayback(playback)
	fmt.Println()
	return nil
}

func listModes(ctx context.Context, client *apiconnect.Client) error {
	var out apiconnect.ListModesResponse
	in := apiconnect.ListModesRequest{Language: *modesLanguage}
	if err := client.Call(ctx, apiconnect.DJServiceListModesProcedure, in, &out); err != nil {
		return err
	}

	fmt.Printf("Modes: %d\n", len(out.Modes))
	for _, m := range out.Modes {
		fmt.Printf("  %-20s %s %s\n", m.ID, m.Icon, m.Name)
		fmt.Printf("  %-20s language=%s energy=%s genres=%s\n", "", m.Language, m.Energy, strings.Join(m.Genres, ","))
	}
	return nil
}

func printSession(s dj.State) {
	fmt.Printf("Active: %v\n", s.Active)
	fmt.Printf("Auto-queue: %s\n", onOff(s.AutoQueue))
	if s.Mode != nil {
		fmt.Printf("Mode: %s (%s)\n", s.Mode.Name, s.Mode.ID)
	}
	if s.Profile != nil {
		fmt.Printf("Vibe: language=%s industry=%s genre=%s energy=%s mood=%s tempo=%s\n",
			s.Profile.Language, s.Profile.FilmIndustry, s.Profile.Genre, s.Profile.Energy, s.Profile.Mood, s.Profile.Tempo)
	}
	fmt.Printf("Played: %d\n", len(s.PlayedTracks))
	fmt.Printf("Up next: %d\n", len(s.NextTracks))
	for i, t := range s.NextTracks {
		fmt.Printf("  %2d. %s\n", i+1, formatTrack(t))
	}
}

func printPlayback(s map[string]any) {
	fmt.Printf("State: %v\n", s["state"])
	if t, ok := s["track"].(map[string]any); ok {
		fmt.Printf("Track: %v - %v (id %v)\n", t["artistName"], t["trackName"], t["trackId"])
	}
	fmt.Printf("Position: %s / %s\n", formatSeconds(s["position"]), formatSeconds(s["duration"]))
	fmt.Printf("Volume: %v\n", s["volume"])
	if enabled, ok := s["autoPlayNext"].(bool); ok {
		fmt.Printf("Auto-play next: %s\n", onOff(enabled))
	}
	if settings, ok := s["settings"].(map[string]any); ok {
		fmt.Printf("Transition: %v %vs curve=%v gap=%vs\n",
			settings["transitionType"], settings["crossfadeDuration"], settings["volumeCurve"], settings["gapDuration"])
	}
}

func printState(msg *structpb.Struct) error {
	var m apiconnect.StateMessage
	if err := apiconnect.Decode(msg, &m); err != nil {
		return err
	}
	fmt.Printf("[%s] #%d %s\n", time.Now().Format(time.TimeOnly), m.SequenceNo, m.Type)
	printSession(m.State)
	return nil
}

func printEvent(msg *structpb.Struct) error {
	data, err := protojson.Marshal(msg)
	if err != nil {
		return err
	}
	fmt.Printf("[%s] %s\n", time.Now().Format(time.TimeOnly), data)
	return nil
}

func formatTrack(t track.Track) string {
	s := fmt.Sprintf("%s - %s (id %d", t.ArtistName, t.Name, t.ID)
	if t.Genre != "" {
		s += ", " + t.Genre
	}
	return s + ")"
}

func formatSeconds(v any) string {
	f, _ := v.(float64)
	d := time.Duration(f * float64(time.Second)).Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
