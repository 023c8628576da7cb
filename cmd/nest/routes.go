package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/nest/internal/caddyfile"
)

func newRoutesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "routes",
		Aliases: []string{"route"},
		Short:   "List, add and delete the routes of a site",
		Long: `List, add and delete the handle and handle_path routes of a site.

Routes are numbered from 1 in file order. Numbers shift after every
change, so list the routes again before deleting another one.`,
	}
	cmd.AddCommand(
		newRoutesListCmd(a),
		newRoutesAddProxyCmd(a),
		newRoutesAddStaticCmd(a),
		newRoutesDeleteCmd(a),
	)
	return cmd
}

func newRoutesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list <domain>",
		Aliases: []string{"ls"},
		Short:   "List the routes of a site",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			routes, err := svc.Routes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if routes == nil {
				routes = []caddyfile.Route{}
			}
			if ok, err := writeStructured(a.out, a.format, routes); ok {
				return err
			}
			if len(routes) == 0 {
				fmt.Fprintln(a.out, mutedStyle.Render("No routes."))
				return nil
			}
			writeRoutes(a.out, routes)
			return nil
		},
	}
}

func newRoutesAddProxyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "add-proxy <domain> <path> <port>",
		Short:   "Add a reverse-proxy route",
		Example: "  nest routes add-proxy example.com '/api/*' 9000",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := svc.AddReverseProxy(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s → :%s\n", successStyle.Render("Reverse proxy added:"), args[1], trimColon(args[2]))
			return nil
		},
	}
}

func newRoutesAddStaticCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "add-static <domain> <route> <folder>",
		Short:   "Add a static-file route",
		Example: "  nest routes add-static example.com /docs ~/www/docs",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := svc.AddStaticRoute(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s → %s\n", successStyle.Render("Static route added:"), args[1], args[2])
			return nil
		},
	}
}

func newRoutesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <domain> <number>",
		Aliases: []string{"rm"},
		Short:   "Delete a route by its number in 'routes list'",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("route number %q: %w", args[1], err)
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := svc.DeleteRoute(cmd.Context(), args[0], n-1); err != nil {
				var idxErr *caddyfile.RouteIndexError
				if errors.As(err, &idxErr) {
					return fmt.Errorf("no route number %d, %s has %d route(s)", n, args[0], idxErr.Count)
				}
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render("Route deleted successfully!"))
			return nil
		},
	}
}

func trimColon(port string) string {
	if len(port) > 0 && port[0] == ':' {
		return port[1:]
	}
	return port
}
