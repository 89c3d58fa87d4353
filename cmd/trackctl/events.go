package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Log engagement events",
}

var eventsLogCmd = &cobra.Command{
	Use:   "log <tracking-id> <open|click>",
	Short: "Log a single open or click event",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := apiPost("/events", map[string]string{
			"tracking_id": args[0],
			"event_type":  args[1],
		})
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	},
}

func init() {
	eventsCmd.AddCommand(eventsLogCmd)
}
