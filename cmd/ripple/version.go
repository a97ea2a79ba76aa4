package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ripple/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var (
	versionFormat   string
	versionShowFull bool
)

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "include commit hash and build date")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show ripple build information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch strings.ToLower(versionFormat) {
		case "json":
			payload := versionPayload{
				Tool:    "ripple",
				Version: version.Version,
			}
			if versionShowFull {
				payload.GitCommit = version.GitCommit
				payload.BuildDate = version.BuildDate
			}
			data, err := json.MarshalIndent(payload, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(data))
		case "pretty":
			cmd.Printf("ripple %s\n", version.Version)
			if versionShowFull {
				if version.GitCommit != "" {
					cmd.Printf("commit: %s\n", version.GitCommit)
				}
				if version.BuildDate != "" {
					cmd.Printf("built:  %s\n", version.BuildDate)
				}
			}
		default:
			return fmt.Errorf("unknown format %q (expected pretty or json)", versionFormat)
		}
		return nil
	},
}
