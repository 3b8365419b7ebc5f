package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CjlConsultoria/convivium2/internal/api"
	"github.com/CjlConsultoria/convivium2/internal/auth"
	"github.com/CjlConsultoria/convivium2/internal/validate"
)

type membershipView struct {
	CondominiumID int64  `json:"condominiumId" yaml:"condominiumId"`
	Condominium   string `json:"condominium" yaml:"condominium"`
	Role          string `json:"role" yaml:"role"`
	Status        string `json:"status" yaml:"status"`
}

type userView struct {
	ID          int64            `json:"id" yaml:"id"`
	Email       string           `json:"email" yaml:"email"`
	Name        string           `json:"name" yaml:"name"`
	Phone       string           `json:"phone,omitempty" yaml:"phone,omitempty"`
	Admin       bool             `json:"platformAdmin" yaml:"platformAdmin"`
	Current     int64            `json:"currentCondominium,omitempty" yaml:"currentCondominium,omitempty"`
	Memberships []membershipView `json:"memberships" yaml:"memberships"`
}

func viewUser(u *auth.UserInfo, current int64) userView {
	v := userView{ID: u.ID, Email: u.Email, Name: u.Name, Admin: u.IsPlatformAdmin, Current: current}
	if u.Phone != nil {
		v.Phone = validate.FormatPhone(*u.Phone)
	}
	for _, m := range u.CondominiumRoles {
		v.Memberships = append(v.Memberships, membershipView{
			CondominiumID: m.CondominiumID,
			Condominium:   m.CondominiumName,
			Role:          string(m.Role),
			Status:        string(m.Status),
		})
	}
	return v
}

func loginCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Sign in with email and password",
		Long: `Sign in and persist the token pair.
The password is read from --password or, when omitted, from the first line of stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
			email := strings.TrimSpace(args[0])
			if !validate.Email(email) {
				return fmt.Errorf("invalid email %q", email)
			}
			password, err := cmd.Flags().GetString("password")
			if err != nil {
				return err
			}
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("password is required")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if err := a.session.Login(ctx, email, password); err != nil {
				return err
			}
			return a.render(viewUser(a.session.User(), a.tenants.CurrentCondominiumID()))
		}),
	}
	cmd.Flags().StringP("password", "p", "", "account password")
	return cmd
}

func logoutCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored tokens",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, _ *cobra.Command, a *app, _ []string) error {
			a.session.Logout(ctx)
			fmt.Fprintln(a.out, "logged out")
			return nil
		}),
	}
}

func whoamiCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, _ *cobra.Command, a *app, _ []string) error {
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			return a.render(viewUser(a.session.User(), a.tenants.CurrentCondominiumID()))
		}),
	}
}

func profileCmd(withApp appRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update your own name or phone",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
			if err := a.requireSession(ctx); err != nil {
				return err
			}
			var upd api.ProfileUpdate
			if cmd.Flags().Changed("name") {
				name, _ := cmd.Flags().GetString("name")
				if !validate.Required(name) {
					return errors.New("name must not be blank")
				}
				upd.Name = &name
			}
			if cmd.Flags().Changed("phone") {
				phone, _ := cmd.Flags().GetString("phone")
				if !validate.Phone(phone) {
					return fmt.Errorf("invalid phone %q", phone)
				}
				upd.Phone = &phone
			}
			if upd.Name == nil && upd.Phone == nil {
				return errors.New("nothing to update; pass --name or --phone")
			}
			if err := a.session.UpdateMyProfile(ctx, upd); err != nil {
				return err
			}
			return a.render(viewUser(a.session.User(), a.tenants.CurrentCondominiumID()))
		}),
	}
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("phone", "", "phone with area code")
	return cmd
}
