package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/linkvault/cmd/linkvault"
	"github.com/arthur-debert/linkvault/pkg/ui"
)

func main() {
	rootCmd := linkvault.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		msg := fmt.Sprintf("Error: %v", err)
		if ui.DetectFormat(os.Stderr) == ui.FormatTerminal {
			msg = ui.NewStyles(os.Stderr).Render(ui.StyleError, msg)
		}
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
}
