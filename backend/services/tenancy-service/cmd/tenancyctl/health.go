package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/routes"
)

const healthCheckTimeout = 2 * time.Second

type checkResult struct {
	url string
	err error
}

// checkAll hits every url concurrently and reports each outcome in input order.
func checkAll(ctx context.Context, client *http.Client, urls []string) []checkResult {
	results := make([]checkResult, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			results[i] = checkResult{url: u, err: checkOne(ctx, client, u)}
		}(i, u)
	}
	wg.Wait()
	return results
}

func checkOne(ctx context.Context, client *http.Client, u string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func healthCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "health <base-url>...",
		Short: "Check the health endpoint of one or more running instances",
		Example: `  tenancyctl health http://localhost:8080
  tenancyctl health http://tenancy-a:8080 http://tenancy-b:8080`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := make([]string, len(args))
			for i, base := range args {
				urls[i] = strings.TrimRight(base, "/") + routes.Health
			}

			client := &http.Client{Timeout: timeout}
			unhealthy := 0
			for _, r := range checkAll(cmd.Context(), client, urls) {
				if r.err != nil {
					unhealthy++
					fmt.Fprintf(cmd.OutOrStdout(), "UNHEALTHY %s: %v\n", r.url, r.err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK        %s\n", r.url)
			}
			if unhealthy > 0 {
				return errors.New("one or more instances are unhealthy")
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", healthCheckTimeout, "per-request timeout")
	return cmd
}
