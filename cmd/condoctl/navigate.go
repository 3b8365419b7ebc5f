package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CjlConsultoria/convivium2/internal/auth"
	"github.com/CjlConsultoria/convivium2/internal/guard"
)

type decisionView struct {
	Path     string `json:"path" yaml:"path"`
	Route    string `json:"route" yaml:"route"`
	Allowed  bool   `json:"allowed" yaml:"allowed"`
	Redirect string `json:"redirect,omitempty" yaml:"redirect,omitempty"`
	Rule     int    `json:"rule" yaml:"rule"`
}

func (a *app) navigate(ctx context.Context, path string) decisionView {
	target := a.guard.Resolve(path)
	d := a.guard.Navigate(ctx, path)
	return decisionView{Path: path, Route: target.Meta.Name, Allowed: d.Allow, Redirect: d.Location(), Rule: d.Rule}
}

func useCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "use CONDOMINIUM_ID",
		Short: "Select the condominium subsequent commands act on",
		Long: `Enter the condominium dashboard. Access follows the same rules as the
web client: the membership must be ACTIVE unless you are a platform admin.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, _ *cobra.Command, a *app, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid condominium id %q", args[0])
			}
			v := a.navigate(ctx, fmt.Sprintf("/c/%d", id))
			if !v.Allowed {
				return a.render(v)
			}
			sel := a.tenants.Current()
			out := map[string]any{"condominiumId": sel.CondominiumID}
			if sel.Summary != nil {
				out["name"] = sel.Summary.Name
				out["status"] = sel.Summary.Status
			}
			return a.render(out)
		}),
	}
}

func canCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "can PERMISSION|ROLE",
		Short: "Check a permission (users.view) or role (SINDICO) in a condominium",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			condo, err := a.condo(cmd)
			if err != nil && !a.session.IsPlatformAdmin() {
				return err
			}
			p := auth.NewPrincipal(a.session.User(), condo)
			subject := strings.TrimSpace(args[0])
			var granted bool
			if strings.Contains(subject, ".") {
				granted = p.HasPermission(subject)
			} else {
				role, ok := auth.ParseRole(subject)
				if !ok {
					return fmt.Errorf("%w: %s", auth.ErrUnknownRole, subject)
				}
				granted = p.HasRole(role)
			}
			return a.render(map[string]any{"subject": subject, "condominiumId": condo, "granted": granted})
		}),
	}
	cmd.Flags().Int64(condoFlag, 0, "condominium id (default: the selected one)")
	return cmd
}

func navCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nav PATH",
		Short: "Show where the client would take you for PATH",
		Args: func(cmd *cobra.Command, args []string) error {
			if list, _ := cmd.Flags().GetBool("routes"); list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			if list, _ := cmd.Flags().GetBool("routes"); list {
				return a.render(guard.Patterns(guard.DefaultRoutes()))
			}
			return a.render(a.navigate(ctx, args[0]))
		}),
	}
	cmd.Flags().Bool("routes", false, "list the screen table instead")
	return cmd
}
