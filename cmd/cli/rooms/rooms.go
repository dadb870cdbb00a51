package rooms

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/roomhub/roomhub/cmd/cli/client"
	"github.com/roomhub/roomhub/cmd/cli/output"
)

type room struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
	IsActive bool   `json:"is_active"`
}

// InitRooms registers room management commands on the root command.
func InitRooms(rootCmd *cobra.Command) {
	roomsCmd := &cobra.Command{
		Use:   "rooms",
		Short: "Manage rooms",
	}

	roomsCmd.AddCommand(
		listRoomsCmd(),
		availableRoomsCmd(),
		createRoomCmd(),
		deactivateRoomCmd(),
	)

	rootCmd.AddCommand(roomsCmd)
}

func renderRooms(rooms []room) {
	rows := make([][]interface{}, 0, len(rooms))
	for _, r := range rooms {
		rows = append(rows, []interface{}{r.ID, r.Name, r.Location, r.Capacity, r.IsActive})
	}
	output.RenderTable([]string{"ID", "Name", "Location", "Capacity", "Active"}, rows)
}

func listRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			var rooms []room
			if err := client.Do("GET", "/rooms", nil, &rooms); err != nil {
				return err
			}
			renderRooms(rooms)
			return nil
		},
	}
}

func availableRoomsCmd() *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "available",
		Short: "List rooms free for a time range",
		RunE: func(cmd *cobra.Command, args []string) error {
			if start == "" || end == "" {
				return fmt.Errorf("--start and --end are required (RFC3339)")
			}
			q := url.Values{}
			q.Set("start", start)
			q.Set("end", end)

			var rooms []room
			if err := client.Do("GET", "/rooms/available?"+q.Encode(), nil, &rooms); err != nil {
				return err
			}
			renderRooms(rooms)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "range start (RFC3339, e.g. 2026-03-10T09:00:00Z)")
	cmd.Flags().StringVar(&end, "end", "", "range end (RFC3339)")

	return cmd
}

func createRoomCmd() *cobra.Command {
	var name, location string
	var capacity int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"name":     name,
				"location": location,
				"capacity": capacity,
			}
			var created room
			if err := client.Do("POST", "/rooms", payload, &created); err != nil {
				return err
			}
			fmt.Printf("Created room %d: %s\n", created.ID, created.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "room name")
	cmd.Flags().StringVar(&location, "location", "", "room location")
	cmd.Flags().IntVar(&capacity, "capacity", 0, "room capacity")

	return cmd
}

func deactivateRoomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a room (no new bookings)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var updated room
			if err := client.Do("POST", "/rooms/"+args[0]+"/deactivate", nil, &updated); err != nil {
				return err
			}
			fmt.Printf("Room %d deactivated\n", updated.ID)
			return nil
		},
	}
}
