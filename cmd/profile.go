////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/campusguard/client/storage/account"
)

func init() {
	profileCmd.Flags().Bool("refresh", false,
		"Re-resolve the profile against the remote store")
	profileCmd.Flags().StringSlice("set", nil,
		"field=value pairs to update (full_name, phone_number, course, "+
			"department, level, hall)")
	profileCmd.Flags().String("theme", "",
		"Set the theme preference (dark or light)")

	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show, refresh, or update the campus profile",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		defer a.close()
		ctx := context.Background()

		if theme, _ := cmd.Flags().GetString("theme"); theme != "" {
			if err := a.rec.SetTheme(theme); err != nil {
				jww.FATAL.Panicf("%+v", err)
			}
		}

		if pairs, _ := cmd.Flags().GetStringSlice("set"); len(pairs) > 0 {
			updates, err := parseUpdates(pairs)
			if err != nil {
				jww.FATAL.Panicf("%+v", err)
			}
			p, err := a.rec.UpdateProfile(ctx, updates)
			if err != nil {
				jww.FATAL.Panicf("profile update was NOT "+
					"saved: %+v", err)
			}
			printProfile(p)
			return
		}

		if refresh, _ := cmd.Flags().GetBool("refresh"); refresh {
			p, err := a.rec.RefreshProfile(ctx)
			if err != nil {
				jww.FATAL.Panicf("%+v", err)
			}
			printProfile(p)
			return
		}

		printProfile(a.rec.Profile())
	},
}

func parseUpdates(pairs []string) (map[string]string, error) {
	updates := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, found := strings.Cut(pair, "=")
		if !found || k == "" {
			return nil, errors.Errorf(
				"malformed field pair %q, want field=value", pair)
		}
		updates[k] = v
	}
	return updates, nil
}

func printProfile(p *account.Profile) {
	if p == nil {
		fmt.Println("No profile available.")
		return
	}
	fmt.Printf("Name:       %s\n", p.FullName)
	fmt.Printf("Matric no:  %s\n", p.MatricNo)
	fmt.Printf("Email:      %s\n", p.Email)
	fmt.Printf("Phone:      %s\n", p.PhoneNumber)
	fmt.Printf("Course:     %s\n", p.Course)
	fmt.Printf("Department: %s\n", p.Department)
	fmt.Printf("Level:      %s\n", p.Level)
	fmt.Printf("Hall:       %s\n", p.Hall)
	if !p.UpdatedAt.IsZero() {
		fmt.Printf("Updated:    %s\n", p.UpdatedAt.Format(
			"2006-01-02 15:04"))
	}
}
