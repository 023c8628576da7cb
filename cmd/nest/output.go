package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ZebulonRouseFrantzich/nest/internal/caddyfile"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
}

// writeStructured encodes v as JSON or YAML. It reports false for text
// output so the caller renders its own view.
func writeStructured(w io.Writer, format string, v interface{}) (bool, error) {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

// writeSummary prints the at-a-glance view of a site.
func writeSummary(w io.Writer, sum caddyfile.Summary) {
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Domain Name:"), sum.Domain)
	if sum.Bind != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Bind:"), sum.Bind)
	}
	if sum.RootDir != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Root Directory:"), sum.RootDir)
	}
	if sum.ReverseProxy != "" {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Root Reverse Proxy:"), sum.ReverseProxy)
	}

	if len(sum.Routes) > 0 {
		fmt.Fprintln(w, labelStyle.Render("Routes:"))
		writeRoutes(w, sum.Routes)
	}

	encoding := mutedStyle.Render("none")
	if len(sum.Encoding) > 0 {
		encoding = strings.Join(sum.Encoding, " ")
	}
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Encoding:"), encoding)
}

func writeRoutes(w io.Writer, routes []caddyfile.Route) {
	for _, r := range routes {
		path := r.Path
		if r.CatchAll() {
			path = mutedStyle.Render("(catch-all)")
		}
		line := fmt.Sprintf("  %d. %s → %s", r.Index+1, path, r.Directive)
		if r.Target != "" {
			line += " " + accentStyle.Render(r.Target)
		}
		fmt.Fprintln(w, line)
	}
}
