package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room and round commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomShowCmd())
	cmd.AddCommand(newRoomLeaveCmd())
	cmd.AddCommand(newRoomSettingsCmd())
	cmd.AddCommand(newRoomHostCmd())
	cmd.AddCommand(newRoomKickCmd())
	cmd.AddCommand(newRoomStartCmd())
	cmd.AddCommand(newRoomReportCmd())
	cmd.AddCommand(newRoomEndCmd())
	cmd.AddCommand(newRoomSayCmd())
	cmd.AddCommand(newRoomWordCmd())

	return cmd
}

func printRoom(cmd *cobra.Command, path string, post bool) error {
	var result Room
	var err error
	if post {
		err = client.Post(path, nil, &result)
	} else {
		err = client.Get(path, &result)
	}
	if err != nil {
		return err
	}

	NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
	return nil
}

func newRoomCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a room and become its host",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRoom(cmd, "/api/v1/rooms", true)
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room by code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRoom(cmd, "/api/v1/rooms/"+strings.ToUpper(args[0])+"/join", true)
		},
	}
}

func newRoomShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [code]",
		Short: "Show your current room, or a room by code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return printRoom(cmd, "/api/v1/rooms/"+strings.ToUpper(args[0]), false)
			}
			return printRoom(cmd, "/api/v1/room", false)
		},
	}
}

func newRoomLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave your current room",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/room/leave", nil, nil); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Left room")
			return nil
		},
	}
}

func newRoomSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Change room settings (host only)",
	}

	cmd.AddCommand(newCountSettingCmd("spies", "Set the number of spies", "/api/v1/room/settings/spy-count"))
	cmd.AddCommand(newCountSettingCmd("blanks", "Set the number of blanks", "/api/v1/room/settings/blank-count"))
	cmd.AddCommand(&cobra.Command{
		Use:   "random <true|false>",
		Short: "Toggle random word orientation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[0], err)
			}
			return putSettings(cmd, "/api/v1/room/settings/is-random", map[string]bool{"is_random": v})
		},
	})

	return cmd
}

func newCountSettingCmd(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <n>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid count %q: %w", args[0], err)
			}
			return putSettings(cmd, path, map[string]int{"count": n})
		},
	}
}

func putSettings(cmd *cobra.Command, path string, body any) error {
	var result Settings
	if err := client.Put(path, body, &result); err != nil {
		return err
	}
	NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
	return nil
}

func newRoomHostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "host <player-id>",
		Short: "Hand the host role to another player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/room/host", map[string]string{"player_id": args[0]}, nil); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Host transferred to " + args[0])
			return nil
		},
	}
}

func newRoomKickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kick <player-id>",
		Short: "Remove a player from the room (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/room/kick", map[string]string{"player_id": args[0]}, nil); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Kicked " + args[0])
			return nil
		},
	}
}

func newRoomStartCmd() *cobra.Command {
	var civilian, spy string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a round (host only)",
		Long: `Start a round. Pass --civilian and --spy to choose the words,
or omit both to draw a pair from the server's word bank.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if civilian != "" || spy != "" {
				body = map[string]string{"civilian_word": civilian, "spy_word": spy}
			}
			if err := client.Post("/api/v1/room/start", body, nil); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Round started")
			return nil
		},
	}

	cmd.Flags().StringVar(&civilian, "civilian", "", "Civilian word")
	cmd.Flags().StringVar(&spy, "spy", "", "Spy word")

	return cmd
}

func newRoomReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <player-id>",
		Short: "Report a suspected spy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ReportResult
			if err := client.Post("/api/v1/room/report", map[string]string{"player_id": args[0]}, &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRoomEndCmd() *cobra.Command {
	var winner string

	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the round and reveal all roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/room/end", map[string]string{"winner": winner}, nil); err != nil {
				return err
			}
			return printRoom(cmd, "/api/v1/room", false)
		},
	}

	cmd.Flags().StringVar(&winner, "winner", "", "Winner label, e.g. civilians or spies")

	return cmd
}

func newRoomSayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "say <text>",
		Short: "Send a chat message to the room",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return client.Post("/api/v1/room/messages", map[string]string{"text": text}, nil)
		},
	}
}

func newRoomWordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "word",
		Short: "Show your word for the current round",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Reveal
			if err := client.Get("/api/v1/room/word", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
