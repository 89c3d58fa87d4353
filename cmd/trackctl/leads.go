package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type leadView struct {
	ID           string     `json:"id"`
	TrackingID   string     `json:"tracking_id"`
	CampaignName *string    `json:"campaign_name"`
	Email        string     `json:"email"`
	CreatedAt    time.Time  `json:"created_at"`
	OpenedAt     *time.Time `json:"opened_at"`
	FirstClickAt *time.Time `json:"first_click_at"`
}

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Manage leads",
}

var (
	listEmail      string
	listTrackingID string
	listFromDate   string
	listToDate     string
)

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if listEmail != "" {
			q.Set("email", listEmail)
		}
		if listTrackingID != "" {
			q.Set("tracking_id", listTrackingID)
		}
		if listFromDate != "" {
			q.Set("from_date", listFromDate)
		}
		if listToDate != "" {
			q.Set("to_date", listToDate)
		}

		body, err := apiGet("/leads?" + q.Encode())
		if err != nil {
			return err
		}
		if output == "json" {
			fmt.Println(string(body))
			return nil
		}

		var leads []leadView
		if err := json.Unmarshal(body, &leads); err != nil {
			return err
		}
		for _, l := range leads {
			campaign := "-"
			if l.CampaignName != nil {
				campaign = *l.CampaignName
			}
			opened := "no"
			if l.OpenedAt != nil {
				opened = l.OpenedAt.Format(time.RFC3339)
			}
			clicked := "no"
			if l.FirstClickAt != nil {
				clicked = l.FirstClickAt.Format(time.RFC3339)
			}
			fmt.Printf("%s  tracking=%s  email=%s  campaign=%s  opened=%s  clicked=%s\n",
				l.ID, l.TrackingID, l.Email, campaign, opened, clicked)
		}
		return nil
	},
}

var (
	createLeadID   string
	createEmail    string
	createCampaign string
)

var leadsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a lead (pass exactly one of --lead-id or --email)",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]string{}
		if createLeadID != "" {
			payload["lead_id"] = createLeadID
		}
		if createEmail != "" {
			payload["email"] = createEmail
		}
		if createCampaign != "" {
			payload["campaign_name"] = createCampaign
		}

		body, err := apiPost("/leads", payload)
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	},
}

var leadsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a lead by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := apiGet("/leads/" + args[0])
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	},
}

var leadsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a lead by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := http.NewRequest(http.MethodDelete, apiURL+"/leads/"+args[0], nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("delete failed (%d): %s", resp.StatusCode, body)
		}
		fmt.Fprintln(os.Stderr, "deleted")
		return nil
	},
}

func init() {
	leadsListCmd.Flags().StringVar(&listEmail, "email", "", "filter by email")
	leadsListCmd.Flags().StringVar(&listTrackingID, "tracking-id", "", "filter by tracking id")
	leadsListCmd.Flags().StringVar(&listFromDate, "from", "", "created on or after (YYYY-MM-DD)")
	leadsListCmd.Flags().StringVar(&listToDate, "to", "", "created on or before (YYYY-MM-DD)")

	leadsCreateCmd.Flags().StringVar(&createLeadID, "lead-id", "", "caller-supplied tracking id")
	leadsCreateCmd.Flags().StringVar(&createEmail, "email", "", "lead email")
	leadsCreateCmd.Flags().StringVar(&createCampaign, "campaign", "", "campaign name")

	leadsCmd.AddCommand(leadsListCmd, leadsCreateCmd, leadsGetCmd, leadsDeleteCmd)
}

func apiGet(path string) ([]byte, error) {
	resp, err := http.Get(apiURL + path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed (%d): %s", resp.StatusCode, body)
	}
	return body, nil
}

func apiPost(path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(apiURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed (%d): %s", resp.StatusCode, body)
	}
	return body, nil
}
