// Command jrsls is the editor-protocol server binary: a thin cobra root
// command that resolves CLI flags into a config.Config and hands it to
// server.New, in the same single-binary shape as the teacher's cmd/sai
// and cmd/javalyzer entry points.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jrsls/jrsls/config"
	"github.com/jrsls/jrsls/server"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()
	var keywordsCSV string

	cmd := &cobra.Command{
		Use:   "jrsls",
		Short: "Java resolution language server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keywordsCSV != "" {
				cfg.JavaKeywords = config.ParseKeywordsCSV(keywordsCSV)
			}
			return server.New(cfg, version).Run()
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.Mode, "mode", cfg.Mode, "transport mode: tcp-socket or stdin")
	flags.Uint16Var(&cfg.Port, "port", cfg.Port, "TCP port when --mode=tcp-socket")
	flags.StringVar(&cfg.JavaHome, "java-home", "", "JDK install directory (overrides JAVA_HOME)")
	flags.Uint16Var(&cfg.JavaVersion, "java-version", cfg.JavaVersion, "Java language level; gates the keyword set")
	flags.StringVar(&keywordsCSV, "java-keywords", "", "comma-separated keyword list overriding the version-derived set")

	return cmd
}
