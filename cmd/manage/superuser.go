package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"airport-service/internal/configs"
	"airport-service/internal/repository/postgres"
	"airport-service/internal/service"
	"airport-service/internal/validation"
)

func createSuperuserCmd() *cobra.Command {
	var in service.RegisterInput

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff account with superuser rights",
		Long: `Create a staff account with superuser rights.

The password may also be given through SUPERUSER_PASSWORD.

Example:
  manage createsuperuser --email admin@example.com --first-name Ada --last-name Admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				in.Password = os.Getenv("SUPERUSER_PASSWORD")
			}
			if in.Password == "" {
				return errors.New("password is required (--password or SUPERUSER_PASSWORD)")
			}
			return withDB(func(_ configs.Config, db *gorm.DB) error {
				svc := service.NewService(postgres.NewRepository(db), nil)
				u, err := svc.CreateSuperuser(cmd.Context(), in)
				var verr *validation.Error
				var conflict *service.ConflictError
				switch {
				case errors.As(err, &verr):
					return fmt.Errorf("invalid input: %v", verr.Fields)
				case errors.As(err, &conflict):
					return fmt.Errorf("user already exists: %s", conflict.Message)
				case err != nil:
					return err
				}
				logrus.WithField("id", u.ID).Printf("superuser %s created", u.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")

	return cmd
}
