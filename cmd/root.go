////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 CampusGuard                                               //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package cmd initializes the CLI and config parsers as well as the logger.
package cmd

import (
	"context"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
	"gitlab.com/elixxir/ekv"

	"gitlab.com/campusguard/client/chat"
	"gitlab.com/campusguard/client/event"
	"gitlab.com/campusguard/client/remote/supabase"
	"gitlab.com/campusguard/client/session"
	"gitlab.com/campusguard/client/storage/account"
	"gitlab.com/campusguard/client/storage/contact"
	"gitlab.com/campusguard/client/storage/conversation"
	"gitlab.com/campusguard/client/storage/versioned"
)

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "campusguard",
	Short: "Campus-safety client: sessions, profile, emergency contacts, chat",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a := initApp()
		defer a.close()

		fmt.Printf("State: %s\n", a.rec.State())
		if u := a.rec.User(); u != nil {
			fmt.Printf("User: %s (%s)\n", u.Email, u.ID)
		}
		if p := a.rec.Profile(); p != nil {
			fmt.Printf("Profile: %s, %s %s\n",
				p.FullName, p.Department, p.Level)
		}
		fmt.Printf("Theme: %s\n", a.rec.Theme())
	},
}

// app bundles the wired client core for the duration of one command.
type app struct {
	rec    *session.Reconciler
	chat   *chat.Manager
	events *event.Manager
}

func (a *app) close() {
	a.chat.Close()
	a.rec.Close()
	a.events.Close()
}

// initApp opens the local store and runs the startup reconciliation pass.
func initApp() *app {
	initLog(viper.GetUint("logLevel"), viper.GetString("log"))

	storeDir := viper.GetString("session")
	pass := viper.GetString("password")
	store, err := ekv.NewFilestore(storeDir, pass)
	if err != nil {
		jww.FATAL.Panicf("failed to open local store at %s: %+v",
			storeDir, err)
	}
	kv := versioned.NewKV(store)

	backend := supabase.New(viper.GetString("backend-url"),
		viper.GetString("anon-key"))
	events := event.NewManager()

	rec := session.NewReconciler(backend, backend, backend,
		account.NewStore(kv), events)
	rec.Initialize(context.Background())

	mgr := chat.NewManager(contact.NewStore(kv),
		conversation.NewStore(kv), nil)

	return &app{rec: rec, chat: mgr, events: events}
}

func initLog(threshold uint, logPath string) {
	if logPath != "-" && logPath != "" {
		// Disable stdout output
		jww.SetStdoutOutput(ioutil.Discard)
		// Use log file
		logOutput, err := os.OpenFile(logPath,
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			panic(err.Error())
		}
		jww.SetLogOutput(logOutput)
	}

	if threshold > 1 {
		jww.SetStdoutThreshold(jww.LevelTrace)
		jww.SetLogThreshold(jww.LevelTrace)
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
		jww.INFO.Printf("log level set to: TRACE")
	} else if threshold == 1 {
		jww.SetStdoutThreshold(jww.LevelDebug)
		jww.SetLogThreshold(jww.LevelDebug)
		jww.SetFlags(log.LstdFlags | log.Lmicroseconds)
		jww.INFO.Printf("log level set to: DEBUG")
	} else {
		jww.SetStdoutThreshold(jww.LevelInfo)
		jww.SetLogThreshold(jww.LevelInfo)
	}
}

// init is the initialization function for Cobra which defines commands
// and flags.
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("session", "s", ".campusguard",
		"Sets the directory of the local durable cache")
	rootCmd.PersistentFlags().StringP("password", "p", "",
		"Password for the local durable cache")
	rootCmd.PersistentFlags().String("backend-url", "",
		"Base URL of the hosted backend project")
	rootCmd.PersistentFlags().String("anon-key", "",
		"Anonymous API key of the hosted backend project")
	rootCmd.PersistentFlags().UintP("logLevel", "v", 0,
		"Verbose mode for debugging (0 = info, 1 = debug, 2 = trace)")
	rootCmd.PersistentFlags().StringP("log", "l", "-",
		"Path to the log output path (- is stdout)")
	rootCmd.PersistentFlags().StringP("config", "c", "",
		"Path to load the configuration file from")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		jww.FATAL.Panicf("failed to bind flags: %+v", err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	cfgFile := viper.GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME/.campusguard")
		viper.AddConfigPath(".")
		viper.SetConfigName("campusguard")
	}

	viper.SetEnvPrefix("campusguard")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		jww.DEBUG.Printf("using config file: %s",
			viper.ConfigFileUsed())
	}
}
