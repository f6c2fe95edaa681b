package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scrapekit/pkg/scraper"
)

var (
	fetchMethod string
	fetchBody   string
	showHeaders bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch a URL and print the body to stdout",
	Args:  cobra.ExactArgs(1),
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

		var opts []scraper.RequestOption
		if fetchBody != "" {
			opts = append(opts, scraper.WithBody([]byte(fetchBody)))
		}

		resp, err := s.Request(cmd.Context(), fetchMethod, args[0], opts...)
		if err != nil {
			return err
		}

		if showHeaders {
			fmt.Fprintf(os.Stderr, "%d %s (from_cache=%v)\n",
				resp.StatusCode, resp.URL, resp.FromCache)
			for k, vs := range resp.Header {
				for _, v := range vs {
					fmt.Fprintf(os.Stderr, "%s: %s\n", k, v)
				}
			}
		}

		fmt.Print(resp.Text())
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchMethod, "method", "X", "GET", "request method")
	fetchCmd.Flags().StringVarP(&fetchBody, "data", "d", "", "request body (makes sense with -X POST)")
	fetchCmd.Flags().BoolVarP(&showHeaders, "include", "i", false, "print status and headers to stderr")
	rootCmd.AddCommand(fetchCmd)
}
