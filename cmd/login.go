package cmd

import (
	"fmt"

	"visor/internal/domain"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Check your credentials against the site and save them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		cfg := a.cfg.Snapshot()

		user := domain.User{
			Email:    email,
			Password: password,
			Remember: remember,
		}
		if user.Email == "" {
			user.Email = cfg.Email
		}
		if user.Password == "" {
			user.Password = cfg.Password
		}
		if !cmd.Flags().Changed("remember") {
			user.Remember = cfg.Remember
		}

		if user.Email == "" || user.Password == "" {
			return errors.New("email and password are required")
		}

		m, err := a.newManager(cfg)
		if err != nil {
			return err
		}

		if err := m.Login(ctx, user.Email, user.Password, user.Remember); err != nil {
			return errors.Wrapf(err, "could not log in as %s", user.Email)
		}

		if err := a.store.SaveUser(ctx, user); err != nil {
			return err
		}

		fmt.Printf("Logged in to %s as %s\n", m, user.Email)

		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved credentials",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ok, err := a.store.HasUser(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No saved credentials")
			return nil
		}

		if err := a.store.DeleteUser(ctx); err != nil {
			return err
		}

		fmt.Println("Saved credentials removed")

		return nil
	},
}
