// Command c4enumerate walks the unique positions reachable within a given
// depth and prints their move sequences, one per line, for consumption by
// an external scorer ahead of c4genbook.
package main

import (
	"bufio"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/YKhan142008/connect4-engine/internal/bookgen"
	"github.com/YKhan142008/connect4-engine/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:   "c4enumerate <depth>",
		Short: "Enumerate unique positions up to a ply depth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.Bind(cmd.Flags()); err != nil {
				return err
			}
			depth, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			w := bufio.NewWriter(os.Stdout)
			defer w.Flush()
			return bookgen.Enumerate(depth, w)
		},
	}

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("c4enumerate failed")
	}
}
