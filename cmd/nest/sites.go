package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/nest/internal/caddyfile"
)

func newSitesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sites",
		Aliases: []string{"site"},
		Short:   "List, show, add and delete sites",
	}
	cmd.AddCommand(
		newSitesListCmd(a),
		newSitesShowCmd(a),
		newSitesAddCmd(a),
		newSitesDeleteCmd(a),
	)
	return cmd
}

func newSitesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the sites in the Caddyfile",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			sites, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}

			summaries := make([]caddyfile.Summary, 0, len(sites))
			for _, site := range sites {
				summaries = append(summaries, caddyfile.Summarize(site))
			}
			if ok, err := writeStructured(a.out, a.format, summaries); ok {
				return err
			}

			if len(summaries) == 0 {
				fmt.Fprintln(a.out, mutedStyle.Render("No sites in "+svc.Path()))
				return nil
			}
			for i, sum := range summaries {
				detail := fmt.Sprintf("%d route(s)", len(sum.Routes))
				if sum.Bind != "" {
					detail = sum.Bind + ", " + detail
				}
				fmt.Fprintf(a.out, "%d. %s %s\n", i+1, sum.Domain, mutedStyle.Render("("+detail+")"))
			}
			return nil
		},
	}
}

func newSitesShowCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <domain>",
		Short: "Show one site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			site, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if raw {
				fmt.Fprintln(a.out, caddyfile.NewRenderer().RenderSite(site))
				return nil
			}
			sum := caddyfile.Summarize(site)
			if ok, err := writeStructured(a.out, a.format, sum); ok {
				return err
			}
			writeSummary(a.out, sum)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the site block as Caddyfile text")
	return cmd
}

func newSitesAddCmd(a *app) *cobra.Command {
	var (
		root   string
		port   string
		bind   string
		noBind bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "add <domain>",
		Short: "Add a static, reverse-proxy or mixed site",
		Long: `Add a site that serves a folder (--root) or proxies to a local port (--port).
With neither flag the site starts empty, ready for 'nest routes add-proxy'
and 'nest routes add-static'.

The bind address comes from bind_template in nest.lua unless --bind or
--no-bind is given. The encodings listed in nest.lua are applied.`,
		Example: `  nest sites add blog.example.com --root ~/www/blog
  nest sites add api.example.com --port 8080
  nest sites add app.example.com`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			domain := args[0]

			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			settings, err := a.loadSettings(ctx)
			if err != nil {
				return err
			}

			if !noBind && bind == "" {
				if bind, err = settings.BindFor(domain); err != nil {
					return err
				}
			}
			if noBind {
				bind = ""
			}

			var site *caddyfile.SiteBlock
			switch {
			case root != "":
				site, err = caddyfile.NewStaticSite(domain, bind, root)
			case port != "":
				site, err = caddyfile.NewReverseProxySite(domain, bind, port)
			default:
				site, err = caddyfile.NewMixedSite(domain, bind)
			}
			if err != nil {
				return err
			}
			if _, err := caddyfile.SetEncoding(site, settings.Encoding...); err != nil {
				return err
			}

			if err := svc.CreateSite(ctx, site, force); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s\n", successStyle.Render("Site created:"), domain)
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "folder to serve as static files")
	cmd.Flags().StringVar(&port, "port", "", "local port to reverse proxy to")
	cmd.Flags().StringVar(&bind, "bind", "", "bind address (overrides bind_template)")
	cmd.Flags().BoolVar(&noBind, "no-bind", false, "do not add a bind line")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "replace an existing site with the same domain")
	cmd.MarkFlagsMutuallyExclusive("root", "port")
	cmd.MarkFlagsMutuallyExclusive("bind", "no-bind")
	return cmd
}

func newSitesDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <domain>",
		Aliases: []string{"rm"},
		Short:   "Delete a site",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain := args[0]
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			if !yes {
				ok, err := a.prompter.Confirm(fmt.Sprintf("Are you sure you want to delete site %q?", domain))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(a.out, mutedStyle.Render("Nothing deleted."))
					return nil
				}
			}

			if err := svc.DeleteSite(cmd.Context(), domain); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s\n", successStyle.Render("Site deleted:"), domain)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
