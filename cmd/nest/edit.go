package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/nest/internal/caddyfile"
	"github.com/ZebulonRouseFrantzich/nest/internal/service"
)

// Menu entries of the interactive editor.
const (
	actionAddProxy   = "Add reverse proxy route"
	actionAddStatic  = "Add static route"
	actionDelRoute   = "Delete route"
	actionEncoding   = "Set encoding"
	actionSave       = "Save changes"
	actionDiscard    = "Discard changes"
	actionDeleteSite = "Delete site"
	actionQuit       = "Quit"

	choiceNewSite  = "+ Add new site"
	siteKindStatic = "Static files"
	siteKindProxy  = "Reverse proxy"
	siteKindMixed  = "Mixed (static + reverse proxy routes)"
)

var editActions = []string{
	actionAddProxy,
	actionAddStatic,
	actionDelRoute,
	actionEncoding,
	actionSave,
	actionDiscard,
	actionDeleteSite,
	actionQuit,
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [domain]",
		Short: "Edit a site interactively",
		Long: `Open an interactive editor for one site. Without a domain you pick a site
from the Caddyfile or create a new one.

Changes stay in memory until you choose "Save changes".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}

			var session *service.EditSession
			if len(args) == 1 {
				session, err = svc.Begin(ctx, args[0])
			} else {
				session, err = a.chooseSession(ctx, svc)
			}
			if isAbort(err) {
				return nil
			}
			if err != nil {
				return err
			}
			err = a.editLoop(ctx, session)
			if isAbort(err) {
				fmt.Fprintln(a.out, mutedStyle.Render("Aborted, unsaved changes dropped."))
				return nil
			}
			return err
		},
	}
}

func isAbort(err error) bool {
	return errors.Is(err, huh.ErrUserAborted)
}

// chooseSession asks which site to edit, or builds a new one.
func (a *app) chooseSession(ctx context.Context, svc *service.SiteService) (*service.EditSession, error) {
	sites, err := svc.List(ctx)
	if err != nil {
		return nil, err
	}
	domains := make(map[string]bool, len(sites))
	options := make([]string, 0, len(sites)+1)
	for _, site := range sites {
		domains[site.Domain] = true
		options = append(options, site.Domain)
	}
	options = append(options, choiceNewSite)

	choice, err := a.prompter.Select("Which site?", options)
	if err != nil {
		return nil, err
	}
	if choice != choiceNewSite {
		return svc.Begin(ctx, choice)
	}

	site, err := a.promptNewSite(ctx, domains)
	if err != nil {
		return nil, err
	}
	return svc.BeginNew(site), nil
}

func (a *app) promptNewSite(ctx context.Context, existing map[string]bool) (*caddyfile.SiteBlock, error) {
	settings, err := a.loadSettings(ctx)
	if err != nil {
		return nil, err
	}

	domain, err := a.prompter.Input("Enter Domain:", "example.com", func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("domain is required")
		}
		if existing[strings.TrimSpace(s)] {
			return fmt.Errorf("%s already exists", s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	domain = strings.TrimSpace(domain)

	bind, err := settings.BindFor(domain)
	if err != nil {
		return nil, err
	}

	kind, err := a.prompter.Select("What does the site serve?", []string{siteKindStatic, siteKindProxy, siteKindMixed})
	if err != nil {
		return nil, err
	}

	var site *caddyfile.SiteBlock
	switch kind {
	case siteKindMixed:
		// Routes are added from the edit menu.
		site, err = caddyfile.NewMixedSite(domain, bind)
		if err != nil {
			return nil, err
		}
	case siteKindStatic:
		root, err := a.prompter.Input("Enter Root Folder Path:", "/srv/www", required("root folder"))
		if err != nil {
			return nil, err
		}
		site, err = caddyfile.NewStaticSite(domain, bind, strings.TrimSpace(root))
		if err != nil {
			return nil, err
		}
	default:
		port, err := a.prompter.Input("Enter Proxy Target (e.g. 8080):", "8080", required("port"))
		if err != nil {
			return nil, err
		}
		site, err = caddyfile.NewReverseProxySite(domain, bind, strings.TrimSpace(port))
		if err != nil {
			return nil, err
		}
	}

	if _, err := caddyfile.SetEncoding(site, settings.Encoding...); err != nil {
		return nil, err
	}
	return site, nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// editLoop shows the site and applies menu actions until the user quits,
// deletes the site, or discards a site that was never saved.
func (a *app) editLoop(ctx context.Context, session *service.EditSession) error {
	for {
		fmt.Fprintln(a.out)
		writeSummary(a.out, session.Summary())
		fmt.Fprintf(a.out, "%s %s\n", labelStyle.Render("State:"), session.State())

		action, err := a.prompter.Select("Actions", editActions)
		if err != nil {
			return err
		}

		switch action {
		case actionAddProxy:
			path, err := a.prompter.Input("Enter Path (e.g. /api/*):", "/api/*", required("path"))
			if err != nil {
				return err
			}
			port, err := a.prompter.Input("Enter Target (e.g. 8080):", "8080", required("port"))
			if err != nil {
				return err
			}
			a.report(session.AddReverseProxy(strings.TrimSpace(path), strings.TrimSpace(port)),
				fmt.Sprintf("Reverse Proxy Added: %s → :%s", path, trimColon(port)))

		case actionAddStatic:
			path, err := a.prompter.Input("Enter Path (e.g. /static/*):", "/static/*", required("path"))
			if err != nil {
				return err
			}
			folder, err := a.prompter.Input("Enter Folder Path:", "/srv/static", required("folder"))
			if err != nil {
				return err
			}
			a.report(session.AddStaticRoute(strings.TrimSpace(path), strings.TrimSpace(folder)),
				fmt.Sprintf("Static Route Added: %s → %s", path, folder))

		case actionDelRoute:
			routes := session.Summary().Routes
			if len(routes) == 0 {
				fmt.Fprintln(a.out, mutedStyle.Render("This site has no routes."))
				continue
			}
			labels := make([]string, len(routes))
			for i, r := range routes {
				labels[i] = fmt.Sprintf("%d. %s → %s", i+1, r.Path, r.Directive)
			}
			choice, err := a.prompter.Select("Which route would you like to delete?", labels)
			if err != nil {
				return err
			}
			index := indexOf(labels, choice)
			a.report(session.DeleteRoute(index), "Route deleted successfully!")

		case actionEncoding:
			value, err := a.prompter.Input("Encodings (space separated, empty for none):", "gzip zstd", nil)
			if err != nil {
				return err
			}
			a.report(session.SetEncoding(strings.Fields(value)...), "Encoding updated.")

		case actionSave:
			if err := session.Save(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render("Updates saved successfully!"))

		case actionDiscard:
			session.Discard()
			if session.Closed() {
				fmt.Fprintln(a.out, mutedStyle.Render("New site discarded."))
				return nil
			}
			fmt.Fprintln(a.out, mutedStyle.Render("Changes discarded."))

		case actionDeleteSite:
			ok, err := a.prompter.Confirm(fmt.Sprintf("Are you sure you want to delete site %q?", session.Domain()))
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := session.Delete(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render("Site deleted successfully!"))
			return nil

		case actionQuit:
			if session.State() == service.StateDirty {
				save, err := a.prompter.Confirm("Save changes before quitting?")
				if err != nil {
					return err
				}
				if save {
					if err := session.Save(ctx); err != nil {
						return err
					}
					fmt.Fprintln(a.out, successStyle.Render("Updates saved successfully!"))
				}
			}
			return nil
		}
	}
}

// report prints the outcome of an editor operation. Rejected edits are
// shown and the editor carries on.
func (a *app) report(err error, success string) {
	if err != nil {
		fmt.Fprintf(a.out, "%s %v\n", errorStyle.Render("error:"), err)
		return
	}
	fmt.Fprintln(a.out, successStyle.Render(success))
}

func indexOf(items []string, item string) int {
	for i, v := range items {
		if v == item {
			return i
		}
	}
	return -1
}
