package main

import (
	"fmt"
	"os"

	"github.com/roomhub/roomhub/cmd/cli/audit"
	"github.com/roomhub/roomhub/cmd/cli/auth"
	"github.com/roomhub/roomhub/cmd/cli/bookings"
	"github.com/roomhub/roomhub/cmd/cli/rooms"
	"github.com/roomhub/roomhub/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	rooms.InitRooms(rootCmd)
	bookings.InitBookings(rootCmd)
	audit.InitAudit(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
