package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scrapekit/pkg/scraper"
)

var retrieveOutput string

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <url>",
	Short: "Download a URL to a file",
	Long: `Download the response body to disk, primarily for binary payloads.
Without --output a temporary file is created and its path printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		s, err := scraper.New(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		path, resp, err := s.Retrieve(cmd.Context(), args[0], retrieveOutput)
		if err != nil {
			return err
		}

		fmt.Printf("%s (%d, %d bytes)\n", path, resp.StatusCode, len(resp.Body))
		return nil
	},
}

func init() {
	retrieveCmd.Flags().StringVarP(&retrieveOutput, "output", "o", "", "destination path")
	rootCmd.AddCommand(retrieveCmd)
}
