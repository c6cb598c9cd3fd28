package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// defaultAPIBase matches the daemon's default api.host/api.port.
const defaultAPIBase = "http://127.0.0.1:8732"

// treeDevice mirrors the daemon's device JSON.
type treeDevice struct {
	Identity     string   `json:"identity"`
	Path         string   `json:"path"`
	Bus          string   `json:"bus"`
	Vendor       string   `json:"vendor"`
	Product      string   `json:"product"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Capabilities []string `json:"capabilities"`
	GroupKey     string   `json:"group_key"`
}

// treePhysical mirrors the daemon's physical-aggregate JSON.
type treePhysical struct {
	GroupKey     string   `json:"group_key"`
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
	Constituents []string `json:"constituents"`
}

// cmdTree dumps the daemon's registry grouped by physical device:
// aggregates first with their constituent kernel nodes indented under
// them, then any nodes that never grouped. Requires api.enabled.
func cmdTree(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	base := fs.String("api", defaultAPIBase, "daemon API base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("tree: unexpected arguments %v", fs.Args())
	}

	httpClient := &http.Client{Timeout: 5 * time.Second}

	var devList struct {
		Devices []treeDevice `json:"devices"`
	}
	if err := apiGet(httpClient, *base+"/api/v1/devices", &devList); err != nil {
		return err
	}
	var physList struct {
		Physical []treePhysical `json:"physical"`
	}
	if err := apiGet(httpClient, *base+"/api/v1/physical", &physList); err != nil {
		return err
	}

	byIdentity := make(map[string]treeDevice, len(devList.Devices))
	for _, d := range devList.Devices {
		byIdentity[d.Identity] = d
	}

	grouped := make(map[string]struct{})
	for _, p := range physList.Physical {
		fmt.Fprintln(out, physicalLine(p))
		for _, id := range p.Constituents {
			grouped[id] = struct{}{}
			if d, ok := byIdentity[id]; ok {
				fmt.Fprintf(out, "  %s\n", deviceLine(d))
			} else {
				fmt.Fprintf(out, "  %s\n", id)
			}
		}
	}

	first := true
	for _, d := range devList.Devices {
		if _, ok := grouped[d.Identity]; ok {
			continue
		}
		if first {
			fmt.Fprintln(out, "ungrouped:")
			first = false
		}
		fmt.Fprintf(out, "  %s\n", deviceLine(d))
	}

	if len(physList.Physical) == 0 && len(devList.Devices) == 0 {
		fmt.Fprintln(out, "no devices registered")
	}
	return nil
}

func physicalLine(p treePhysical) string {
	parts := []string{p.GroupKey}
	if p.Type != "" {
		parts = append(parts, p.Type)
	}
	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	if len(p.Capabilities) > 0 {
		parts = append(parts, "["+strings.Join(p.Capabilities, " ")+"]")
	}
	return strings.Join(parts, "  ")
}

func deviceLine(d treeDevice) string {
	parts := []string{d.Identity, d.Bus, d.Vendor + ":" + d.Product}
	if d.Name != "" {
		parts = append(parts, d.Name)
	}
	if d.Type != "" {
		parts = append(parts, d.Type)
	}
	return strings.Join(parts, "  ")
}

// apiGet fetches one endpoint and decodes its JSON body into v.
func apiGet(c *http.Client, url string, v any) error {
	resp, err := c.Get(url)
	if err != nil {
		return fmt.Errorf("querying %s: %w (is the daemon API enabled?)", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Response teardown

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("querying %s: status %s", url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s response: %w", url, err)
	}
	return nil
}
