package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Short:   "Inspect saved picker sessions",
	GroupID: groupSession,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions, most recent first",
	RunE:  runSessionList,
}

func init() {
	sessionCmd.AddCommand(sessionListCmd)
}

func runSessionList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := loadSessionStore(cfg)
	if err != nil {
		return fmt.Errorf("load sessions: %w", err)
	}

	sessions := store.List()
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no saved sessions")
		return nil
	}
	for i, s := range sessions {
		fmt.Fprintf(cmd.OutOrStdout(), "%d: %s %v\n", i+1, s.Name, s.Args)
	}
	return nil
}
