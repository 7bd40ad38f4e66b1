package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/weft-ai/weft/internal/chat"
	"github.com/weft-ai/weft/internal/config"
	"github.com/weft-ai/weft/internal/expand"
	"github.com/weft-ai/weft/internal/logging"
	"github.com/weft-ai/weft/internal/payload"
)

// expandResult is the JSON shape written to stdout.
type expandResult struct {
	Messages    []chat.Message `json:"messages"`
	TokenCounts map[int]int    `json:"index_token_count_map,omitempty"`
}

func newExpandCmd() *cobra.Command {
	var tokensPath string
	var allow []string

	cmd := &cobra.Command{
		Use:   "expand [payload.json]",
		Short: "Expand a payload file (or stdin) into chat messages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("verbose") {
				logging.SetLevel(parseLogLevel(cfg.Log.Level))
			}

			entries, err := readPayload(cmd, args)
			if err != nil {
				return err
			}

			var tokenCounts map[int]int
			if tokensPath != "" {
				data, err := os.ReadFile(tokensPath)
				if err != nil {
					return fmt.Errorf("read token counts: %w", err)
				}
				if err := json.Unmarshal(data, &tokenCounts); err != nil {
					return fmt.Errorf("decode token counts: %w", err)
				}
				if tokenCounts == nil {
					tokenCounts = map[int]int{}
				}
			}

			allowed := allowedTools(cmd, allow, cfg)
			engine := expand.Engine{SearchTool: cfg.Expand.SearchTool}
			messages, outCounts := engine.Expand(entries, tokenCounts, allowed)

			logging.Logger().Info(
				"payload expanded",
				"entries", len(entries),
				"messages", len(messages),
				"restricted", allowed != nil,
			)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(expandResult{Messages: messages, TokenCounts: outCounts})
		},
	}
	cmd.Flags().StringVar(&tokensPath, "tokens", "", "path to a sparse entry-index to token-count JSON map")
	cmd.Flags().StringSliceVar(&allow, "allow", nil, "allowed tool names (default: unrestricted)")
	return cmd
}

func readPayload(cmd *cobra.Command, args []string) ([]payload.Entry, error) {
	var data []byte
	var err error
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read payload from stdin: %w", err)
		}
	}
	var entries []payload.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return entries, nil
}

// allowedTools resolves the allow-list: an explicit flag wins, then the
// config seed list; an empty result means unrestricted.
func allowedTools(cmd *cobra.Command, flagValue []string, cfg *config.Config) []string {
	if cmd.Flags().Changed("allow") {
		return flagValue
	}
	if len(cfg.Expand.AllowedTools) > 0 {
		return cfg.Expand.AllowedTools
	}
	return nil
}
