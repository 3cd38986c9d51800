package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/internal/app"
	"github.com/fastygo/taskview/internal/services/lifecycle"
	authUC "github.com/fastygo/taskview/usecase/auth"
)

func newUserCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var in authUC.RegisterInput
	var role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a user directly in storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			manager := lifecycle.New(0, c.logger)
			defer manager.Shutdown(ctx)

			repos, err := app.OpenStorage(ctx, c.cfg, manager, nil, c.logger)
			if err != nil {
				return err
			}

			in.Role = domain.Role(role)
			user, err := authUC.New(repos.Users, repos.Sessions, nil, 0, c.logger).Register(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", user.ID, user.Email, user.Role)
			return nil
		},
	}
	create.Flags().StringVar(&in.Username, "username", "", "display name")
	create.Flags().StringVar(&in.Email, "email", "", "login email")
	create.Flags().StringVar(&in.Password, "password", "", "initial password")
	create.Flags().StringVar(&role, "role", string(domain.RoleCreator), "creator or executor")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")
	_ = create.MarkFlagRequired("username")
	cmd.AddCommand(create)

	return cmd
}
