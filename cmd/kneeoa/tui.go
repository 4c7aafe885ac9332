package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ashureev/kneeoa/internal/chat"
	"github.com/ashureev/kneeoa/internal/content"
	"github.com/ashureev/kneeoa/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the assessment chat in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := content.Open(cfg.ContentDir)
		if err != nil {
			return err
		}
		script, err := store.ChatScript()
		if err != nil {
			return fmt.Errorf("load initial chat: %w", err)
		}
		responder, err := chat.NewResponder(cfg.Responder)
		if err != nil {
			return err
		}

		// The alternate screen owns the terminal.
		if !verbose {
			slog.SetDefault(slog.New(slog.DiscardHandler))
		}

		m := tui.New(chat.NewHandler(responder), script, cfg.Reveal.Interval, time.Now())
		return tui.Run(m)
	},
}
