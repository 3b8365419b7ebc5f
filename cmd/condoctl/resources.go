package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/CjlConsultoria/convivium2/internal/api"
	"github.com/CjlConsultoria/convivium2/internal/ui"
)

func pageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 0, "zero-based page")
	cmd.Flags().Int("size", 20, "page size")
	cmd.Flags().String("status", "", "filter by status")
	cmd.Flags().Int64(condoFlag, 0, "condominium id (default: the selected one)")
}

func pageRequest(cmd *cobra.Command) api.PageRequest {
	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")
	status, _ := cmd.Flags().GetString("status")
	return api.PageRequest{Page: page, Size: size, Status: status}
}

func complaintsCmd(withApp appRunner) *cobra.Command {
	parent := &cobra.Command{Use: "complaints", Short: "Condominium complaints"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List complaints",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			condo, err := a.condo(cmd)
			if err != nil {
				return err
			}
			mine, _ := cmd.Flags().GetBool("mine")
			var page api.Page[api.Complaint]
			if mine {
				page, err = a.client.Complaints.Mine(ctx, condo, pageRequest(cmd))
			} else {
				page, err = a.client.Complaints.List(ctx, condo, pageRequest(cmd))
			}
			if err != nil {
				return err
			}
			return a.render(page)
		}),
	}
	pageFlags(list)
	list.Flags().Bool("mine", false, "only complaints you filed")
	parent.AddCommand(list)
	return parent
}

func parcelsCmd(withApp appRunner) *cobra.Command {
	parent := &cobra.Command{Use: "parcels", Short: "Parcels received at the gate"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List parcels",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			condo, err := a.condo(cmd)
			if err != nil {
				return err
			}
			mine, _ := cmd.Flags().GetBool("mine")
			var page api.Page[api.Parcel]
			if mine {
				page, err = a.client.Parcels.Mine(ctx, condo, pageRequest(cmd))
			} else {
				page, err = a.client.Parcels.List(ctx, condo, pageRequest(cmd))
			}
			if err != nil {
				return err
			}
			return a.render(page)
		}),
	}
	pageFlags(list)
	list.Flags().Bool("mine", false, "only parcels for your unit")
	parent.AddCommand(list)
	return parent
}

func notificationsCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show notifications and the unread count",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			store := a.notifications
			if markAll, _ := cmd.Flags().GetBool("mark-all-read"); markAll {
				if err := store.MarkAllAsRead(ctx); err != nil {
					return err
				}
			}
			if id, _ := cmd.Flags().GetInt64("read"); id > 0 {
				if err := store.Fetch(ctx); err != nil {
					return err
				}
				if err := store.MarkAsRead(ctx, id); err != nil {
					return err
				}
			}
			if err := store.Fetch(ctx); err != nil {
				return err
			}
			store.FetchUnreadCount(ctx)
			return a.render(map[string]any{"unread": store.UnreadCount(), "items": store.Items()})
		}),
	}
	cmd.Flags().Bool("mark-all-read", false, "mark every notification as read first")
	cmd.Flags().Int64("read", 0, "mark one notification as read first")
	return cmd
}

func uiCmd(withApp appRunner) *cobra.Command {
	parent := &cobra.Command{Use: "ui", Short: "Stored interface preferences"}
	theme := &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or set the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(ui.ThemeLight), string(ui.ThemeDark)},
		RunE: withApp(func(ctx context.Context, _ *cobra.Command, a *app, args []string) error {
			if len(args) == 1 {
				if err := a.ui.SetTheme(ctx, ui.Theme(args[0])); err != nil {
					return err
				}
			}
			return a.render(map[string]any{"theme": a.ui.Theme(), "sidebarCollapsed": a.ui.SidebarCollapsed()})
		}),
	}
	sidebar := &cobra.Command{
		Use:   "sidebar",
		Short: "Toggle the collapsed sidebar",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, _ *cobra.Command, a *app, _ []string) error {
			collapsed, err := a.ui.ToggleSidebar(ctx)
			if err != nil {
				return err
			}
			return a.render(map[string]any{"sidebarCollapsed": collapsed})
		}),
	}
	parent.AddCommand(theme, sidebar)
	return parent
}
