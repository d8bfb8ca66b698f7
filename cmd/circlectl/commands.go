package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"circle-service/domain"
	httpHandler "circle-service/internal/api/http/handler"
	"circle-service/internal/client"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type options struct {
	server string
	user   string
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "circlectl",
		Short:        "Command line client for study circles",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("CIRCLE_SERVER", "http://localhost:8083"), "circle-service base URL")
	root.PersistentFlags().StringVar(&opts.user, "user", os.Getenv("CIRCLE_USER_ID"), "acting user id")

	root.AddCommand(
		roomsCommand(opts),
		createCommand(opts),
		showCommand(opts),
		joinCommand(opts),
		leaveCommand(opts),
		startCommand(opts),
		stopCommand(opts),
		plantCommand(opts),
		readyCommand(opts),
		watchCommand(opts),
		timerCommand(opts),
		gardenCommand(opts),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (o *options) api() (*client.API, error) {
	userID, err := uuid.Parse(o.user)
	if err != nil {
		return nil, fmt.Errorf("--user must be a uuid: %w", err)
	}
	return client.NewAPI(o.server, userID), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func roomArg(args []string) (uuid.UUID, error) {
	roomID, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid room id %q: %w", args[0], err)
	}
	return roomID, nil
}

func roomsCommand(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List active circles",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.api()
			if err != nil {
				return err
			}
			rooms, err := api.ListRooms(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(rooms)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of rooms")
	return cmd
}

func createCommand(opts *options) *cobra.Command {
	var req httpHandler.CreateRoomRequest
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a circle and join it as owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.api()
			if err != nil {
				return err
			}
			req.Name = args[0]
			room, err := api.CreateRoom(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(room)
		},
	}
	cmd.Flags().StringVar(&req.Description, "description", "", "room description")
	cmd.Flags().IntVar(&req.MaxParticipants, "max", 8, "maximum participants")
	cmd.Flags().IntVar(&req.FocusDuration, "focus", 0, "focus duration in minutes (server default when 0)")
	cmd.Flags().StringVar(&req.Category, "category", "", "category")
	cmd.Flags().StringVar(&req.DisplayName, "name", "", "display name")
	return cmd
}

func showCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show ROOM",
		Short: "Show a circle and its participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.api()
			if err != nil {
				return err
			}
			roomID, err := roomArg(args)
			if err != nil {
				return err
			}
			room, err := api.GetRoom(cmd.Context(), roomID)
			if err != nil {
				return err
			}
			participants, err := api.ListParticipants(cmd.Context(), roomID)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"room": room, "participants": participants})
		},
	}
}

func joinCommand(opts *options) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "join ROOM",
		Short: "Join a circle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.api()
			if err != nil {
				return err
			}
			roomID, err := roomArg(args)
			if err != nil {
				return err
			}
			return api.JoinRoom(cmd.Context(), roomID, name)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	return cmd
}

func leaveCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "leave ROOM",
		Short: "Leave a circle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.api()
			if err != nil {
				return err
			}
			roomID, err := roomArg(args)
			if err != nil {
				return err
			}
			res, err := api.LeaveRoom(cmd.Context(), roomID)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
}

func startCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "start ROOM",
		Short: "Start a focus session (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.api()
			if err != nil {
				return err
			}
			roomID, err := roomArg(args)
			if err != nil {
				return err
			}
			room, err := api.StartSession(cmd.Context(), roomID)
			if err != nil {
				return err
			}
			return printJSON(room)
		},
	}
}

func stopCommand(opts *options) *cobra.Command {
	var killTrees bool
	cmd := &cobra.Command{
		Use:   "stop ROOM",
		Short: "Stop the running session (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.api()
			if err != nil {
				return err
			}
			roomID, err := roomArg(args)
			if err != nil {
				return err
			}
			res, err := api.StopSession(cmd.Context(), roomID, killTrees)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	cmd.Flags().BoolVar(&killTrees, "kill-trees", false, "forfeit every tree of the room on an early stop")
	return cmd
}

func plantCommand(opts *options) *cobra.Command {
	var req httpHandler.PlantTreeRequest
	var emoji string
	cmd := &cobra.Command{
		Use:   "plant ROOM MINUTES",
		Short: "Plant a tree for a finished focus session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.api()
			if err != nil {
				return err
			}
			roomID, err := roomArg(args)
			if err != nil {
				return err
			}
			if _, err := fmt.Sscanf(args[1], "%d", &req.FocusMinutes); err != nil {
				return fmt.Errorf("invalid minutes %q", args[1])
			}
			if emoji != "" {
				req.Variety = &domain.Variety{Emoji: emoji}
			}
			tree, err := api.PlantTree(cmd.Context(), roomID, req)
			if err != nil {
				return err
			}
			return printJSON(tree)
		},
	}
	cmd.Flags().StringVar(&req.Category, "category", "", "tree category")
	cmd.Flags().StringVar(&req.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&emoji, "emoji", "", "tree variety emoji")
	return cmd
}

func readyCommand(opts *options) *cobra.Command {
	var notReady bool
	cmd := &cobra.Command{
		Use:   "ready ROOM",
		Short: "Mark yourself ready (or --off)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.api()
			if err != nil {
				return err
			}
			roomID, err := roomArg(args)
			if err != nil {
				return err
			}
			return api.SetReady(cmd.Context(), roomID, !notReady)
		},
	}
	cmd.Flags().BoolVar(&notReady, "off", false, "clear the ready flag")
	return cmd
}

// watchCommand follows a room live: pushed snapshots drive the countdown, and
// the countdown asks the server to stop the session when it runs out.
func watchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch ROOM",
		Short: "Follow a circle's session countdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.api()
			if err != nil {
				return err
			}
			roomID, err := roomArg(args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			countdown := client.NewCountdown(roomID, client.SystemClock, api, printTick)
			go countdown.Run(ctx)

			return client.Subscribe(ctx, opts.server, api.UserID(), roomID, client.RoomListener{
				OnRoom: func(room *domain.Room) { countdown.Update(ctx, room) },
				OnParticipants: func(participants []domain.Participant) {
					ready := 0
					for _, p := range participants {
						if p.IsReady {
							ready++
						}
					}
					fmt.Printf("participants: %d (%d ready)\n", len(participants), ready)
				},
				OnEvent: func(evt domain.RoomEvent) { fmt.Printf("event: %s\n", evt.Type) },
				OnError: func(message string) { fmt.Fprintf(os.Stderr, "error: %s\n", message) },
			})
		},
	}
}

func printTick(t client.Tick) {
	switch {
	case t.Deleted:
		fmt.Println("room deleted")
	case !t.Running:
		fmt.Print("\ridle            ")
	default:
		left := time.Duration(t.RemainingSeconds) * time.Second
		fmt.Printf("\rfocus %02d:%02d left", int(left.Minutes()), int(left.Seconds())%60)
	}
}

func timerCommand(opts *options) *cobra.Command {
	var mode string
	var seconds int
	cmd := &cobra.Command{
		Use:       "timer [start|pause|resume|reset]",
		Short:     "Show or change your personal timer",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"start", "pause", "resume", "reset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.api()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var state *domain.TimerState
			switch {
			case len(args) == 0:
				state, err = api.Timer(ctx)
			case args[0] == "reset":
				state, err = api.ResetTimer(ctx)
			default:
				state, err = api.UpdateTimer(ctx, httpHandler.UpdateTimerRequest{
					Action:          args[0],
					Mode:            mode,
					DurationSeconds: seconds,
				})
			}
			if err != nil {
				return err
			}
			return printJSON(state)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "focus, short_break or long_break")
	cmd.Flags().IntVar(&seconds, "seconds", 0, "custom duration in seconds")
	return cmd
}

func gardenCommand(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "garden",
		Short: "List the trees you planted",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := opts.api()
			if err != nil {
				return err
			}
			entries, err := api.Garden(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries")
	return cmd
}
