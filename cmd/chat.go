////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/campusguard/client/storage/conversation"
)

func init() {
	chatCmd.Flags().String("send", "", "Message to send to the contact")
	chatCmd.Flags().Bool("clear", false, "Clear the chat thread")

	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat [contact-id]",
	Short: "Open a chat thread, optionally sending a message",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		defer a.close()

		c, err := a.chat.LoadContact(args[0])
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		if c == nil {
			jww.FATAL.Panicf("no contact with id %q", args[0])
		}

		if clear, _ := cmd.Flags().GetBool("clear"); clear {
			if err = a.chat.ClearChat(c.ID); err != nil {
				jww.FATAL.Panicf("%+v", err)
			}
			fmt.Println("Chat cleared.")
			return
		}

		thread, err := a.chat.OpenChat(*c)
		if err != nil {
			jww.FATAL.Panicf("%+v", err)
		}
		printThread(thread)

		if text, _ := cmd.Flags().GetString("send"); text != "" {
			if _, err = a.chat.SendMessage(*c, text, ""); err != nil {
				jww.FATAL.Panicf("%+v", err)
			}
			// Give the simulated counterpart time to answer, then
			// show the tail of the thread.
			time.Sleep(3 * time.Second)
			thread, err = a.chat.OpenChat(*c)
			if err != nil {
				jww.FATAL.Panicf("%+v", err)
			}
			printThread(thread)
		}
	},
}

func printThread(thread []conversation.Message) {
	for _, m := range thread {
		read := " "
		if m.Read {
			read = "✓"
		}
		fmt.Printf("[%s] %s %s: %s\n",
			m.Time.Format("15:04"), read, m.Sender, m.Text)
		for _, l := range m.Links {
			fmt.Printf("      -> %s (%s)\n", l.Text, l.Target)
		}
	}
}
