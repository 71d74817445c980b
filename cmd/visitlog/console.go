package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/visitlog-dev/visitlog/internal/navigator"
)

// consoleUser is the author tag stamped on log entries made through
// the local console transport.
const consoleUser = "console"

var consoleUserID int64

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Drive the folder dialogue interactively",
	Long: `console is a local transport over the navigation dialogue: it renders
each view as a numbered menu and turns typed input back into orchestrator
calls. Useful for trying out a configuration without any chat frontend.`,
	RunE: runConsole,
}

func init() {
	consoleCmd.Flags().Int64Var(&consoleUserID, "user", 0, "User ID to act as")
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	line := liner.NewLiner()
	defer func() { _ = line.Close() }()
	line.SetCtrlCAborts(true)

	ctx := context.Background()
	userID := consoleUserID

	if !a.users.IsAllowed(userID) {
		return fmt.Errorf("user %d is not allowed", userID)
	}

	view, err := a.orch.Browse(ctx, userID)
	if err != nil {
		return err
	}
	printView(view)
	printHelp()

	for {
		input, err := line.Prompt(view.CurrentPath + "> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		verb, rest, _ := strings.Cut(input, " ")
		rest = strings.TrimSpace(rest)

		switch verb {
		case "quit", "exit":
			return nil
		case "help":
			printHelp()
		case "ls":
			printView(view)
		case "cd":
			next, err := a.orch.Enter(ctx, userID, joinTarget(view.CurrentPath, rest))
			reportErr(err)
			view = next
			printView(view)
		case "up":
			next, err := a.orch.Up(ctx, userID, view.CurrentPath)
			reportErr(err)
			view = next
			printView(view)
		case "mkdir":
			next, err := a.orch.CreateFolder(ctx, userID, view.CurrentPath, rest)
			if err != nil {
				reportErr(err)
				continue
			}
			view = next
			printView(view)
		case "select":
			sess, err := a.orch.SelectFolder(ctx, userID, view.CurrentPath, consoleUser)
			reportErr(err)
			if sess != nil {
				fmt.Printf("recording into %s\n", sess.TxtFilePath())
			}
		case "say":
			sess, ok := a.registry.GetSession(userID)
			if !ok {
				fmt.Println("no active session")
				continue
			}
			reportErr(a.saver.Record(ctx, sess, consoleUser, rest))
		case "status":
			summary, err := a.orch.CurrentSummary(userID)
			if err != nil {
				reportErr(err)
				continue
			}
			fmt.Println(summary)
		case "end":
			report, err := a.orch.EndSession(ctx, userID, consoleUser)
			if errors.Is(err, navigator.ErrNoActiveSession) {
				fmt.Println("no active session")
				continue
			}
			reportErr(err)
			fmt.Printf("session in %s closed (%d messages, %s)\n",
				report.FolderPath, report.Messages, report.Duration)
			if report.Content != "" {
				fmt.Println(report.Content)
			}
		case "cancel":
			reportErr(a.orch.Cancel(ctx, userID))
		case "allow":
			reportErr(a.admin.AddFolder(ctx, userID, rest))
		case "disallow":
			reportErr(a.admin.RemoveFolder(ctx, userID, rest))
		case "adduser", "rmuser":
			target, err := strconv.ParseInt(rest, 10, 64)
			if err != nil {
				fmt.Println("expected a numeric user ID")
				continue
			}
			if verb == "adduser" {
				reportErr(a.admin.AddUser(ctx, userID, target))
			} else {
				reportErr(a.admin.RemoveUser(ctx, userID, target))
			}
		default:
			fmt.Printf("unknown command %q (try help)\n", verb)
		}
	}
}

func reportErr(err error) {
	if err != nil {
		fmt.Println("error:", err)
	}
}

// joinTarget interprets an argument as absolute when it starts with a
// separator, relative to the current path otherwise.
func joinTarget(current, arg string) string {
	if strings.HasPrefix(arg, "/") || strings.HasPrefix(arg, "disk:") {
		return arg
	}
	return strings.TrimSuffix(current, "/") + "/" + arg
}

func printView(view navigator.View) {
	fmt.Printf("-- %s (%s)\n", view.Title, view.CurrentPath)
	if len(view.Folders) == 0 {
		fmt.Println("   (empty folder, select to record here)")
		return
	}
	for i, f := range view.Folders {
		fmt.Printf("   %d. %s\n", i+1, f.Name)
	}
}

func printHelp() {
	fmt.Println(`commands:
  ls                 show the current folder
  cd <name|path>     enter a folder
  up                 go up a level
  mkdir <name>       create a folder here
  select             start recording in the current folder
  say <text>         append a message to the recording
  status             show the active session
  end                end the session
  cancel             abort the current dialogue
  allow <path>       admin: add an allowed folder
  disallow <path>    admin: remove an allowed folder
  adduser <id>       admin: allow a user
  rmuser <id>        admin: remove a user
  quit`)
}
