////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Handles the sign-in, sign-up, and sign-out commands.

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
)

func init() {
	loginCmd.Flags().String("email", "", "Account email address")
	loginCmd.Flags().String("auth-password", "", "Account password")
	_ = viper.BindPFlag("email", loginCmd.Flags().Lookup("email"))
	_ = viper.BindPFlag("auth-password",
		loginCmd.Flags().Lookup("auth-password"))

	registerCmd.Flags().String("email", "", "Account email address")
	registerCmd.Flags().String("auth-password", "", "Account password")
	registerCmd.Flags().String("full-name", "", "Full name")
	registerCmd.Flags().String("matric-no", "", "Matriculation number")
	registerCmd.Flags().String("phone", "", "Phone number")
	registerCmd.Flags().String("department", "", "Department")
	registerCmd.Flags().String("level", "", "Level")
	registerCmd.Flags().String("hall", "", "Hall of residence")

	resetCmd.Flags().String("email", "", "Account email address")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, resetCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and pull the profile down into the local cache",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		defer a.close()

		email, _ := cmd.Flags().GetString("email")
		pw, _ := cmd.Flags().GetString("auth-password")
		err := a.rec.SignIn(context.Background(), email, pw)
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		fmt.Printf("Signed in as %s\n", email)
		if p := a.rec.Profile(); p != nil {
			fmt.Printf("Welcome back, %s\n", p.FullName)
		}
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and its campus profile",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		defer a.close()

		email, _ := cmd.Flags().GetString("email")
		pw, _ := cmd.Flags().GetString("auth-password")
		fields := map[string]string{}
		for flag, key := range map[string]string{
			"full-name":  "full_name",
			"matric-no":  "matric_no",
			"phone":      "phone_number",
			"department": "department",
			"level":      "level",
			"hall":       "hall",
		} {
			if v, _ := cmd.Flags().GetString(flag); v != "" {
				fields[key] = v
			}
		}

		res, err := a.rec.SignUp(context.Background(), email, pw,
			fields)
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		fmt.Printf("Registered %s. Check your email to confirm the "+
			"account.\n", email)
		if res.ProfileDeferred {
			fmt.Println("Profile setup was deferred; it will " +
				"complete after your first sign-in.")
		}
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the cached identity",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		defer a.close()

		if err := a.rec.SignOut(context.Background()); err != nil {
			// Local state is already cleared; the remote failure
			// is informational.
			jww.WARN.Printf("%+v", err)
		}
		fmt.Println("Signed out.")
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Email a password recovery link",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		defer a.close()

		email, _ := cmd.Flags().GetString("email")
		err := a.rec.ResetPassword(context.Background(), email, "")
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		fmt.Printf("Recovery email sent to %s\n", email)
	},
}
