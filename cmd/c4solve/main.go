// Command c4solve is the line-protocol solver driver: each line of stdin
// is a move sequence, and solve or
// analyze results are printed to stdout with a node-count and elapsed-time
// trailer.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/YKhan142008/connect4-engine/internal/config"
	"github.com/YKhan142008/connect4-engine/internal/position"
	"github.com/YKhan142008/connect4-engine/internal/solver"
)

func defaultBookPath() string {
	return fmt.Sprintf("%dx%d.book", position.Width, position.Height)
}

func main() {
	var (
		weak      bool
		analyze   bool
		bookPath  string
		logLevel  string
		showBoard bool
	)

	root := &cobra.Command{
		Use:   "c4solve",
		Short: "Solve Connect Four positions read from stdin, one move sequence per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.Bind(cmd.Flags())
			if err != nil {
				return err
			}
			weak = v.GetBool("weak")
			analyze = v.GetBool("analyze")
			bookPath = v.GetString("book")
			logLevel = v.GetString("log-level")
			showBoard = v.GetBool("board")

			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				level = zerolog.InfoLevel
			}
			log.Logger = log.Logger.Level(level)

			s := solver.New()
			if !s.LoadBook(bookPath) {
				log.Warn().Str("path", bookPath).Msg("continuing without an opening book")
			}

			return run(s, os.Stdin, os.Stdout, os.Stderr, weak, analyze, showBoard)
		},
	}

	root.Flags().BoolVarP(&weak, "weak", "w", false, "weak solve: only the sign of the score is exact")
	root.Flags().BoolVarP(&analyze, "analyze", "a", false, "print a score for every column instead of one score")
	root.Flags().StringVarP(&bookPath, "book", "b", defaultBookPath(), "opening book path")
	root.Flags().StringVar(&logLevel, "log-level", "info", "zerolog level: debug, info, warn, error")
	root.Flags().BoolVar(&showBoard, "board", false, "print the parsed board to stderr before solving")

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("c4solve failed")
	}
}

func run(s *solver.Solver, stdin, stdout, stderr *os.File, weak, analyze, showBoard bool) error {
	scanner := bufio.NewScanner(stdin)
	writer := bufio.NewWriter(stdout)
	defer writer.Flush()

	lineNumber := 1
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		p := position.New()
		played := p.PlaySeq(line)
		if played != len(line) {
			fmt.Fprintf(stderr, "line %d: invalid move %d %q\n", lineNumber, played+1, line)
			fmt.Fprintln(writer)
			lineNumber++
			continue
		}

		if showBoard {
			fmt.Fprintf(stderr, "%s\n\n", p.String())
		}

		start := time.Now()
		var output string
		if analyze {
			scores := s.Analyze(p, weak)
			var b strings.Builder
			b.WriteString(line)
			for _, sc := range scores {
				fmt.Fprintf(&b, " %d", sc)
			}
			output = b.String()
		} else {
			score := s.Solve(p, weak)
			output = fmt.Sprintf("%s %d", line, score)
		}
		elapsedMicros := time.Since(start).Microseconds()
		fmt.Fprintf(writer, "%s %d %d\n", output, s.NodeCount(), elapsedMicros)
		lineNumber++
	}
	return scanner.Err()
}
