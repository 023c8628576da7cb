package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/nest/internal/caddyfile"
	"github.com/ZebulonRouseFrantzich/nest/internal/service"
	"github.com/ZebulonRouseFrantzich/nest/internal/watch"
)

func newFmtCmd(a *app) *cobra.Command {
	var check, force bool

	cmd := &cobra.Command{
		Use:   "fmt",
		Short: "Rewrite the Caddyfile in canonical form",
		Long: `Rewrite the Caddyfile with four-space indentation and one blank line
between sites. With --check nothing is written and the command fails if
the file is not already formatted.

Lines outside any site block and all but the last of duplicate site
blocks cannot be kept. fmt refuses to write such a file unless --force
is given; run 'nest validate' to see what would be lost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			changed, err := svc.Format(cmd.Context(), check, force)
			if err != nil {
				return err
			}
			switch {
			case changed:
				fmt.Fprintf(a.out, "%s %s\n", successStyle.Render("Formatted"), svc.Path())
			default:
				fmt.Fprintf(a.out, "%s %s\n", mutedStyle.Render("Already formatted:"), svc.Path())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "fail instead of writing if the file is not formatted")
	cmd.Flags().BoolVar(&force, "force", false, "write even if lines outside site blocks are dropped")
	return cmd
}

// errValidationFailed is returned by validate --strict when the file has
// warnings or inline credentials.
var errValidationFailed = errors.New("caddyfile has warnings")

func newValidateCmd(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the Caddyfile for structural errors and inline credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			result, err := svc.Validate(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := writeStructured(a.out, a.format, result); ok {
				if err == nil && strict && !result.OK() {
					return errValidationFailed
				}
				return err
			}

			writeValidateResult(a.out, result)
			if strict && !result.OK() {
				return errValidationFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on warnings and inline credentials")
	return cmd
}

func writeValidateResult(w io.Writer, result *service.ValidateResult) {
	fmt.Fprintf(w, "%s %s: %d site(s), %d route(s)\n",
		successStyle.Render("Parsed"), result.Path, result.Sites, result.Routes)
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "%s %s\n", warningStyle.Render("warning:"), warning)
	}
	if len(result.Secrets) > 0 {
		fmt.Fprint(w, warningStyle.Render(caddyfile.FormatSensitiveDataWarning(result.Secrets)))
	}
}

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate the Caddyfile whenever it changes",
		Long: `Watch the Caddyfile and validate it after every change until interrupted.
The file is never written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}

			check := func(ctx context.Context, _ string) error {
				result, err := svc.Validate(ctx)
				if err != nil {
					fmt.Fprintf(a.out, "%s %v\n", errorStyle.Render("error:"), err)
					return err
				}
				writeValidateResult(a.out, result)
				return nil
			}

			w, err := watch.New(watch.Config{
				Path:     svc.Path(),
				OnChange: check,
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s %s\n", titleStyle.Render("Watching"), w.Path())
			if err := check(ctx, w.Path()); err != nil {
				a.logger.Debug("initial validation failed", "err", err)
			}
			return w.Run(ctx)
		},
	}
	return cmd
}

func newBackupsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List and restore previous versions of the Caddyfile",
	}
	cmd.AddCommand(newBackupsListCmd(a), newBackupsRestoreCmd(a))
	return cmd
}

func newBackupsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List backups, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			backups, err := svc.Backups(cmd.Context())
			if err != nil {
				return err
			}
			if ok, err := writeStructured(a.out, a.format, backups); ok {
				return err
			}
			if len(backups) == 0 {
				fmt.Fprintln(a.out, mutedStyle.Render("No backups."))
				return nil
			}
			for _, b := range backups {
				fmt.Fprintf(a.out, "%s  %s  %s\n",
					accentStyle.Render(b.ID),
					b.Created.Local().Format("2006-01-02 15:04:05"),
					mutedStyle.Render(fmt.Sprintf("%d bytes", b.Size)))
			}
			return nil
		},
	}
}

func newBackupsRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Replace the Caddyfile with a backup",
		Long: `Replace the Caddyfile with the backup <id> from 'nest backups list'.
The current contents are backed up first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			backup, err := svc.Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s from %s\n",
				successStyle.Render("Restored"), svc.Path(), backup.Created.Local().Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}
