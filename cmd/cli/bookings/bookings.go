package bookings

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/roomhub/roomhub/cmd/cli/client"
	"github.com/roomhub/roomhub/cmd/cli/output"
)

type bookingView struct {
	ID         int    `json:"id"`
	OccupantID int    `json:"occupant_id"`
	RoomID     int    `json:"room_id"`
	Title      string `json:"title"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
}

// InitBookings registers booking lifecycle commands on the root command.
func InitBookings(rootCmd *cobra.Command) {
	bookingsCmd := &cobra.Command{
		Use:   "bookings",
		Short: "Manage bookings",
	}

	bookingsCmd.AddCommand(
		listBookingsCmd(),
		createBookingCmd(),
		transitionCmd("approve", "Approve a pending booking", "approve", false),
		transitionCmd("reject", "Reject a pending booking", "reject", true),
		transitionCmd("cancel-request", "Request cancellation of your approved booking", "cancel-request", true),
		transitionCmd("cancel", "Confirm a cancellation request", "cancel", true),
		transitionCmd("cancel-reject", "Deny a cancellation request", "cancel-reject", true),
	)

	rootCmd.AddCommand(bookingsCmd)
}

func listBookingsCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live bookings for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/bookings"
			if date != "" {
				q := url.Values{}
				q.Set("date", date)
				path += "?" + q.Encode()
			}

			var bookings []bookingView
			if err := client.Do("GET", path, nil, &bookings); err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(bookings))
			for _, b := range bookings {
				rows = append(rows, []interface{}{b.ID, b.RoomID, b.OccupantID, b.Title, b.StartTime, b.EndTime, b.Status})
			}
			output.RenderTable([]string{"ID", "Room", "Occupant", "Title", "Start", "End", "Status"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to list (YYYY-MM-DD, default today)")

	return cmd
}

func createBookingCmd() *cobra.Command {
	var roomID, occupantID int
	var title, start, end, adminReason string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a booking (pending until approved)",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"room_id":    roomID,
				"title":      title,
				"start_time": start,
				"end_time":   end,
			}
			if occupantID != 0 {
				payload["occupant_id"] = occupantID
			}
			if adminReason != "" {
				payload["admin_reason"] = adminReason
			}

			var created bookingView
			if err := client.Do("POST", "/bookings", payload, &created); err != nil {
				return err
			}
			fmt.Printf("Created booking %d (%s) for room %d\n", created.ID, created.Status, created.RoomID)
			return nil
		},
	}

	cmd.Flags().IntVar(&roomID, "room", 0, "room id")
	cmd.Flags().StringVar(&title, "title", "", "booking title")
	cmd.Flags().StringVar(&start, "start", "", "start time (RFC3339)")
	cmd.Flags().StringVar(&end, "end", "", "end time (RFC3339)")
	cmd.Flags().IntVar(&occupantID, "occupant", 0, "book on behalf of this user id (admins only)")
	cmd.Flags().StringVar(&adminReason, "admin-reason", "", "reason when booking on behalf of someone")

	return cmd
}

// transitionCmd builds one lifecycle command: roomhub bookings <use> <id> [--reason ...].
func transitionCmd(use, short, action string, reasonRequired bool) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reasonRequired && reason == "" {
				return fmt.Errorf("--reason is required")
			}

			var payload interface{}
			if reason != "" {
				payload = map[string]string{"reason": reason}
			}

			var updated bookingView
			if err := client.Do("POST", "/bookings/"+args[0]+"/"+action, payload, &updated); err != nil {
				return err
			}
			fmt.Printf("Booking %d is now %s\n", updated.ID, updated.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason for this transition")

	return cmd
}
