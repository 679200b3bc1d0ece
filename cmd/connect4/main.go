package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Halfis/Connect4/internal/game"
)

type options struct {
	difficulty string
	rows       int
	cols       int
	seed       int64
	parallel   bool
}

func main() {
	var o options
	flag.StringVar(&o.difficulty, "difficulty", "", "easy, medium or hard; asked interactively when empty")
	flag.IntVar(&o.rows, "rows", game.DefaultRows, "board rows")
	flag.IntVar(&o.cols, "cols", game.DefaultColumns, "board columns")
	flag.Int64Var(&o.seed, "seed", 0, "random seed, 0 for time based")
	flag.BoolVar(&o.parallel, "parallel", false, "search root moves concurrently")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, o); err != nil {
		log.Fatal(err)
	}
}

type client struct {
	in    *bufio.Scanner
	out   io.Writer
	match *game.Match
	cols  int
}

// run plays matches until the user declines another or input ends.
func run(in io.Reader, out io.Writer, o options) error {
	if o.seed == 0 {
		o.seed = time.Now().UnixNano()
	}
	searcher := game.NewSearcher(o.seed)
	searcher.Parallel = o.parallel
	m, err := game.NewMatch(o.rows, o.cols, searcher)
	if err != nil {
		return err
	}
	c := &client{in: bufio.NewScanner(in), out: out, match: m, cols: o.cols}

	for {
		d, err := c.chooseDifficulty(o.difficulty)
		if err != nil {
			return ignoreEOF(err)
		}
		if err := m.SelectDifficulty(d); err != nil {
			return err
		}
		if err := c.play(); err != nil {
			return ignoreEOF(err)
		}
		answer, err := c.ask("Play again? [y/N] ")
		if err != nil || !strings.HasPrefix(strings.ToLower(answer), "y") {
			return ignoreEOF(err)
		}
		m.Restart()
	}
}

func (c *client) chooseDifficulty(preset string) (game.Difficulty, error) {
	if preset != "" {
		return game.ParseDifficulty(preset)
	}
	for {
		line, err := c.ask("Select difficulty (easy, medium, hard): ")
		if err != nil {
			return "", err
		}
		d, err := game.ParseDifficulty(line)
		if err == nil {
			return d, nil
		}
		fmt.Fprintf(c.out, "unknown difficulty %q\n", line)
	}
}

func (c *client) play() error {
	m := c.match
	if m.Turn() == game.Machine {
		fmt.Fprintln(c.out, "Machine moves first.")
	} else {
		fmt.Fprintln(c.out, "You move first.")
	}
	for m.State() == game.InProgress {
		if m.Turn() == game.Machine {
			ply, res, err := m.MachineMove()
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Machine plays column %d (score %d)\n", ply.Column, res.Score)
			continue
		}

		c.printBoard()
		line, err := c.ask(fmt.Sprintf("Your move (0-%d, h for a hint): ", c.cols-1))
		if err != nil {
			return err
		}
		if line == "h" || line == "hint" {
			col, err := m.Hint()
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "hint: column %d\n", col)
			continue
		}
		col, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintf(c.out, "%q is not a column\n", line)
			continue
		}
		if _, err := m.PlayerMove(col); err != nil {
			fmt.Fprintf(c.out, "%v, try again\n", err)
		}
	}

	c.printBoard()
	switch m.Outcome() {
	case game.PlayerWon:
		fmt.Fprintln(c.out, "You win!")
	case game.MachineWon:
		fmt.Fprintln(c.out, "Machine wins!")
	case game.Draw:
		fmt.Fprintln(c.out, "Draw.")
	}
	return nil
}

func (c *client) printBoard() {
	b := c.match.Board()
	for _, line := range strings.Split(b.String(), "\n") {
		fmt.Fprintln(c.out, strings.Join(strings.Split(line, ""), " "))
	}
	labels := make([]string, b.Cols())
	for i := range labels {
		labels[i] = strconv.Itoa(i % 10)
	}
	fmt.Fprintln(c.out, strings.Join(labels, " "))
}

func (c *client) ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
