package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadflow-cli/internal/conversation"
)

var chatSessionID string

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the lead engine",
	Long:  "Sends one message when given as an argument, otherwise starts an interactive loop reading from stdin.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sessionID := chatSessionID
		if sessionID == "" {
			sessionID = conversation.NewSessionID()
			fmt.Printf("session: %s\n", sessionID)
		}

		if len(args) == 1 {
			return chatOnce(cmd, env, sessionID, args[0])
		}

		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "exit" || line == "quit" {
				break
			}
			if line != "" {
				if err := chatOnce(cmd, env, sessionID, line); err != nil {
					return err
				}
			}
			fmt.Print("> ")
		}
		return scanner.Err()
	},
}

func chatOnce(cmd *cobra.Command, env *appEnv, sessionID, message string) error {
	reply, err := env.Engine.HandleMessage(cmd.Context(), sessionID, message)
	if err != nil {
		return err
	}

	fmt.Println(reply.Text)
	if reply.CallOffer != "" {
		fmt.Printf("\n%s\n", reply.CallOffer)
	}
	fmt.Printf("[score=%d temp=%s backend=%s cost=$%.4f]\n",
		reply.LeadScore, reply.Temperature, reply.Backend, reply.Cost)
	return nil
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "session id to continue (default: new session)")
	rootCmd.AddCommand(chatCmd)
}
