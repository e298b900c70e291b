// Command c4genbook reads "<move_sequence> <score>" lines from stdin and
// assembles them into a binary opening book file.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/YKhan142008/connect4-engine/internal/book"
	"github.com/YKhan142008/connect4-engine/internal/bookgen"
	"github.com/YKhan142008/connect4-engine/internal/config"
	"github.com/YKhan142008/connect4-engine/internal/position"
)

func defaultBookPath() string {
	return fmt.Sprintf("%dx%d.book", position.Width, position.Height)
}

func main() {
	var (
		depth   int
		logSize int
		output  string
	)

	root := &cobra.Command{
		Use:   "c4genbook",
		Short: "Build an opening book from scored move sequences read on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.Bind(cmd.Flags())
			if err != nil {
				return err
			}
			depth = v.GetInt("depth")
			logSize = v.GetInt("log-size")
			output = v.GetString("output")

			w := bufio.NewReader(os.Stdin)
			result, err := bookgen.Build(w, depth, logSize, os.Stderr)
			if err != nil {
				return err
			}

			b := book.New(uint8(position.Width), uint8(position.Height))
			b.FromTable(result.Table, result.Depth)
			if err := b.Save(output); err != nil {
				return err
			}
			log.Info().Str("path", output).Int("depth", result.Depth).Msg("opening book written")
			return nil
		},
	}

	root.Flags().IntVar(&depth, "depth", 12, "maximum ply depth the input was scored to")
	root.Flags().IntVar(&logSize, "log-size", 24, "log2 of the transposition table's slot count")
	root.Flags().StringVarP(&output, "output", "o", defaultBookPath(), "output book path")

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("c4genbook failed")
	}
}
