////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/campusguard/client/catalog"
)

func init() {
	contactsAddCmd.Flags().String("name", "", "Contact name")
	contactsAddCmd.Flags().String("number", "", "Phone number")
	contactsAddCmd.Flags().String("category", "", "Contact category")
	contactsAddCmd.Flags().String("priority", "", "Contact priority")

	contactsCmd.AddCommand(contactsAddCmd, contactsDeleteCmd)
	rootCmd.AddCommand(contactsCmd)
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List the emergency directory and recent contacts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		defer a.close()

		contacts, err := a.chat.LoadContacts()
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		for _, c := range contacts {
			marker := " "
			if c.IsUserAdded {
				marker = "*"
			}
			fmt.Printf("%s %-28s %-12s %-16s %s\n", marker, c.Name,
				c.Category, c.Number, c.ID)
		}

		recent, err := a.chat.Recent()
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		if len(recent) > 0 {
			fmt.Println("\nRecent:")
			for _, c := range recent {
				fmt.Printf("  %s\n", c.Name)
			}
		}
	},
}

var contactsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a personal emergency contact",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		defer a.close()

		name, _ := cmd.Flags().GetString("name")
		number, _ := cmd.Flags().GetString("number")
		category, _ := cmd.Flags().GetString("category")
		priority, _ := cmd.Flags().GetString("priority")

		c, err := a.chat.CreateContact(name, number,
			catalog.Category(category), catalog.Priority(priority))
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		fmt.Printf("Added %s (%s)\n", c.Name, c.ID)
	},
}

var contactsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a personal contact, its recent entry, and its chat",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		defer a.close()

		if err := a.chat.DeleteContact(args[0]); err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		fmt.Println("Deleted.")
	},
}
