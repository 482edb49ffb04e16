package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the tickfewer application
var rootCmd = &cobra.Command{
	Use:   "tickfewer",
	Short: "MCP server for TickTick backed by both TickTick APIs",
	Long: `tickfewer exposes TickTick tasks, projects, tags and account data to AI
assistants over the Model Context Protocol.

Every operation is routed to the TickTick API that can serve it: the open API
for token-authenticated task and project reads, the private API for tags,
folders, statistics and batch updates.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "tickfewer version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
