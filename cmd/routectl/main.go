package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// RouteClient handles API communication with a running geodispatch server.
type RouteClient struct {
	baseURL string
	client  *http.Client
}

type locationView struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func main() {
	baseURL := os.Getenv("GEODISPATCH_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := &RouteClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}

	rootCmd := &cobra.Command{
		Use:   "routectl",
		Short: "Inspect and drive a geodispatch server",
		Long:  "A CLI tool to register workers, pull dispatches, and inspect route state on a running geodispatch server",
	}

	workersCmd := &cobra.Command{
		Use:   "workers <area>",
		Short: "List registered workers for an area",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client.showWorkers(args[0])
		},
	}

	var registerOrigin string
	registerCmd := &cobra.Command{
		Use:   "register <area>",
		Short: "Register a worker origin with an area",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client.registerWorker(args[0], registerOrigin)
		},
	}
	registerCmd.Flags().StringVar(&registerOrigin, "origin", "", "Worker origin identifier")
	registerCmd.MarkFlagRequired("origin")

	var unregisterOrigin string
	unregisterCmd := &cobra.Command{
		Use:   "unregister <area>",
		Short: "Unregister a worker origin from an area",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client.unregisterWorker(args[0], unregisterOrigin)
		},
	}
	unregisterCmd.Flags().StringVar(&unregisterOrigin, "origin", "", "Worker origin identifier")
	unregisterCmd.MarkFlagRequired("origin")

	var nextOrigin string
	nextCmd := &cobra.Command{
		Use:   "next <area>",
		Short: "Pull the next dispatched location for a worker origin",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client.nextLocation(args[0], nextOrigin)
		},
	}
	nextCmd.Flags().StringVar(&nextOrigin, "origin", "", "Worker origin identifier")
	nextCmd.MarkFlagRequired("origin")

	var statusOrigin string
	statusCmd := &cobra.Command{
		Use:   "status <area>",
		Short: "Show the area's route progress (served/total) for the current round; --origin only labels the output",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client.showStatus(args[0], statusOrigin)
		},
	}
	statusCmd.Flags().StringVar(&statusOrigin, "origin", "", "Worker origin identifier")

	var roundsOrigin string
	roundsCmd := &cobra.Command{
		Use:   "rounds <area>",
		Short: "Show the completed round count for a worker origin",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client.showRounds(args[0], roundsOrigin)
		},
	}
	roundsCmd.Flags().StringVar(&roundsOrigin, "origin", "", "Worker origin identifier")
	roundsCmd.MarkFlagRequired("origin")

	routeCmd := &cobra.Command{
		Use:   "route <area>",
		Short: "Show the area's current planned route",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client.showRoute(args[0])
		},
	}

	prioRouteCmd := &cobra.Command{
		Use:   "prioroute <area>",
		Short: "Show the area's current priority queue",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client.showPriorityRoute(args[0])
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch <area>",
		Short: "Watch registered workers in real-time (updates every 2 seconds)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client.watchWorkers(args[0])
		},
	}

	rootCmd.AddCommand(workersCmd, registerCmd, unregisterCmd, nextCmd, statusCmd,
		roundsCmd, routeCmd, prioRouteCmd, watchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func (c *RouteClient) showWorkers(area string) {
	var result struct {
		Workers []string `json:"workers"`
	}
	if err := c.getJSON(fmt.Sprintf("/areas/%s/workers", url.PathEscape(area)), &result); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if len(result.Workers) == 0 {
		fmt.Println("No workers registered")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Origin"})
	table.SetBorder(true)
	for _, w := range result.Workers {
		table.Append([]string{w})
	}
	table.Render()
}

func (c *RouteClient) registerWorker(area, origin string) {
	var result struct {
		Created bool `json:"created"`
	}
	path := fmt.Sprintf("/areas/%s/workers/%s", url.PathEscape(area), url.PathEscape(origin))
	if err := c.postJSON(path, &result); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if result.Created {
		fmt.Printf("Registered %s\n", origin)
	} else {
		fmt.Printf("%s was already registered\n", origin)
	}
}

func (c *RouteClient) unregisterWorker(area, origin string) {
	var result struct {
		Removed bool `json:"removed"`
	}
	path := fmt.Sprintf("/areas/%s/workers/%s", url.PathEscape(area), url.PathEscape(origin))
	if err := c.deleteJSON(path, &result); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if result.Removed {
		fmt.Printf("Unregistered %s\n", origin)
	} else {
		fmt.Printf("%s was not registered\n", origin)
	}
}

func (c *RouteClient) nextLocation(area, origin string) {
	var result struct {
		Location *locationView `json:"location"`
	}
	path := fmt.Sprintf("/areas/%s/workers/%s/next", url.PathEscape(area), url.PathEscape(origin))
	if err := c.postJSON(path, &result); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if result.Location == nil {
		fmt.Println("No location available")
		return
	}
	fmt.Printf("Next: %.6f, %.6f\n", result.Location.Lat, result.Location.Lng)
}

func (c *RouteClient) showStatus(area, origin string) {
	if origin == "" {
		var result struct {
			Served int `json:"served"`
			Total  int `json:"total"`
		}
		if err := c.getJSON(fmt.Sprintf("/areas/%s/status", url.PathEscape(area)), &result); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Served: %d/%d\n", result.Served, result.Total)
		return
	}

	var result struct {
		Served int `json:"served"`
		Total  int `json:"total"`
	}
	path := fmt.Sprintf("/areas/%s/status?origin=%s", url.PathEscape(area), url.QueryEscape(origin))
	if err := c.getJSON(path, &result); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s served %d/%d\n", origin, result.Served, result.Total)
}

func (c *RouteClient) showRounds(area, origin string) {
	var result struct {
		Rounds int `json:"rounds"`
	}
	path := fmt.Sprintf("/areas/%s/rounds/%s", url.PathEscape(area), url.PathEscape(origin))
	if err := c.getJSON(path, &result); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s has completed %d round(s)\n", origin, result.Rounds)
}

func (c *RouteClient) showRoute(area string) {
	var result struct {
		Route []locationView `json:"route"`
	}
	if err := c.getJSON(fmt.Sprintf("/areas/%s/route", url.PathEscape(area)), &result); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if len(result.Route) == 0 {
		fmt.Println("No route planned")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Lat", "Lng"})
	table.SetBorder(true)
	for i, loc := range result.Route {
		table.Append([]string{fmt.Sprintf("%d", i+1), fmt.Sprintf("%.6f", loc.Lat), fmt.Sprintf("%.6f", loc.Lng)})
	}
	table.Render()
}

func (c *RouteClient) showPriorityRoute(area string) {
	var result struct {
		Events []struct {
			DueAt    float64      `json:"due_at"`
			Location locationView `json:"location"`
		} `json:"events"`
	}
	if err := c.getJSON(fmt.Sprintf("/areas/%s/prioroute", url.PathEscape(area)), &result); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if len(result.Events) == 0 {
		fmt.Println("Priority queue is empty")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Due At", "Lat", "Lng"})
	table.SetBorder(true)
	for _, e := range result.Events {
		table.Append([]string{
			fmt.Sprintf("%.0f", e.DueAt),
			fmt.Sprintf("%.6f", e.Location.Lat),
			fmt.Sprintf("%.6f", e.Location.Lng),
		})
	}
	table.Render()
}

func (c *RouteClient) watchWorkers(area string) {
	fmt.Println("Watching registered workers (press Ctrl+C to stop)...")
	fmt.Println()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		fmt.Print("\033[H\033[2J")

		var result struct {
			Workers []string `json:"workers"`
		}
		err := c.getJSON(fmt.Sprintf("/areas/%s/workers", url.PathEscape(area)), &result)

		fmt.Printf("Workers in %s (updated %s)\n", area, time.Now().Format("15:04:05"))
		fmt.Println(strings.Repeat("=", 60))

		if err != nil {
			fmt.Printf("Error: %v\n", err)
		} else if len(result.Workers) == 0 {
			fmt.Println("No workers registered")
		} else {
			for _, w := range result.Workers {
				fmt.Println(w)
			}
		}

		<-ticker.C
	}
}

func (c *RouteClient) getJSON(path string, out any) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *RouteClient) postJSON(path string, out any) error {
	resp, err := c.client.Post(c.baseURL+path, "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *RouteClient) deleteJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
