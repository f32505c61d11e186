/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package main is the entry point for corvus-shell (csql), an interactive
REPL client for the embedded corvusdb engine.

Unlike a server-backed SQL client, csql does not speak a wire protocol —
it links against the corvusdb package directly and opens the database
file (or an in-memory instance) in its own process, the way sqlite3's
CLI links against libsqlite3. There is no AUTH, no PING, no server to
reconnect to: every command after csql links in the binary dispatches
straight into a corvusdb.Connection.

Command Types:
==============

 1. Local commands (prefixed with \):
    - \q or \quit    : exit the shell
    - \h or \help    : show help
    - \timing        : toggle execution timing
    - \x             : toggle expanded (one-column-per-line) output
    - \checkpoint    : print a note; the shell does not checkpoint on demand
    - \! <cmd>       : run a shell command

 2. SQL statements, terminated by a semicolon. Multi-line input is
    buffered until the terminating ';' arrives, the same convention
    psql and fsql both use.

Usage Examples:
===============

	Open or create a database file:
	  csql -datadir ./mydb

	Open a transient in-memory database:
	  csql -memory

	Run one statement and exit:
	  csql -datadir ./mydb -e "SELECT * FROM users"
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"corvusdb"
)

const (
	version   = "0.1.0"
	copyright = "(c)2026 Firefly Software Solutions Inc"
)

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// shellFlags holds every command-line flag csql accepts.
type shellFlags struct {
	DataDir        string
	InMemory       bool
	Execute        string
	Format         string
	NoColor        bool
	Version        bool
	Help           bool
	LogLevel       string
	LogJSON        bool
	VectorSize     int
	CheckpointSecs int
	Collation      string
	Encrypt        bool
}

func parseFlags() shellFlags {
	f := shellFlags{}
	flag.StringVar(&f.DataDir, "datadir", "", "database directory (created if missing)")
	flag.BoolVar(&f.InMemory, "memory", false, "open a transient in-memory database")
	flag.StringVar(&f.Execute, "e", "", "execute one statement and exit")
	flag.StringVar(&f.Execute, "execute", "", "execute one statement and exit")
	flag.StringVar(&f.Format, "f", "table", "output format: table, expanded")
	flag.StringVar(&f.Format, "format", "table", "output format: table, expanded")
	flag.BoolVar(&f.NoColor, "no-color", false, "disable colored output")
	flag.BoolVar(&f.Version, "version", false, "print version and exit")
	flag.BoolVar(&f.Help, "help", false, "show this help message")
	flag.StringVar(&f.LogLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flag.BoolVar(&f.LogJSON, "log-json", false, "emit structured JSON logs instead of text")
	flag.IntVar(&f.VectorSize, "vector-size", 0, "rows per vector/chunk (0 = engine default)")
	flag.IntVar(&f.CheckpointSecs, "checkpoint-secs", 0, "checkpoint interval in seconds (0 = engine default)")
	flag.StringVar(&f.Collation, "collation", "", "string collation: binary, unicode (\"\" = engine default)")
	flag.BoolVar(&f.Encrypt, "encrypt", false, "enable at-rest WAL encryption (reads CORVUS_ENCRYPTION_PASSPHRASE)")
	flag.Usage = printUsage
	flag.Parse()
	return f
}

func printUsage() {
	fmt.Printf("corvus-shell (csql) v%s\n", version)
	fmt.Println(copyright)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  csql -datadir <dir> [flags]")
	fmt.Println("  csql -memory [flags]")
	fmt.Println("  csql -datadir <dir> -e \"<statement>\"")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Interactive commands:")
	fmt.Println("  \\q, \\quit        exit the shell")
	fmt.Println("  \\h, \\help        show help")
	fmt.Println("  \\timing          toggle execution timing")
	fmt.Println("  \\x               toggle expanded output")
	fmt.Println("  \\checkpoint      print a note (the shell does not checkpoint on demand)")
	fmt.Println("  \\! <cmd>         run a shell command")
}

// shellState holds the toggleable session settings a backslash command
// flips (spec §6 is silent on a CLI; this mirrors how the teacher's own
// fsql client keeps such state in one struct rather than as loose
// globals).
type shellState struct {
	timing   bool
	expanded bool
}

func main() {
	flags := parseFlags()

	if flags.NoColor || os.Getenv("NO_COLOR") != "" || !isTerminal() {
		setColorsEnabled(false)
	}

	if flags.Version {
		fmt.Printf("csql version %s\n", version)
		fmt.Println(copyright)
		os.Exit(0)
	}
	if flags.Help {
		printUsage()
		os.Exit(0)
	}
	if !flags.InMemory && flags.DataDir == "" {
		fmt.Fprintln(os.Stderr, errorColor("csql: one of -datadir or -memory is required"))
		printUsage()
		os.Exit(2)
	}

	cfg := corvusdb.Default()
	cfg.InMemory = flags.InMemory
	cfg.DataDir = flags.DataDir
	if flags.LogLevel != "" {
		cfg.LogLevel = flags.LogLevel
	}
	cfg.LogJSON = flags.LogJSON
	if flags.VectorSize > 0 {
		cfg.StandardVectorSize = flags.VectorSize
	}
	if flags.CheckpointSecs > 0 {
		cfg.CheckpointIntervalSecs = flags.CheckpointSecs
	}
	applyCollationFlag(cfg, flags.Collation)
	cfg.EncryptionEnabled = flags.Encrypt

	db, err := corvusdb.Open(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorColor("csql: "+err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println()
		db.Close()
		os.Exit(0)
	}()

	conn := db.Connect()
	state := &shellState{}

	if flags.Execute != "" {
		runOne(conn, state, flags.Execute, flags.Format)
		return
	}

	if !isTerminal() {
		runPipedREPL(conn, state, flags.Format)
		return
	}

	runInteractiveREPL(conn, state, flags.Format)
}

func applyCollationFlag(cfg *corvusdb.Config, collation string) {
	switch strings.ToLower(collation) {
	case "binary":
		cfg.Collation = "binary"
	case "unicode":
		cfg.Collation = "unicode"
	}
}

func runOne(conn *corvusdb.Connection, state *shellState, sql string, format string) {
	start := time.Now()
	res, err := conn.Query(sql)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorColor("ERROR: "+err.Error()))
		os.Exit(1)
	}
	printResult(res, format == "expanded" || state.expanded)
	if state.timing {
		fmt.Println(dimColor(fmt.Sprintf("Time: %v", elapsed)))
	}
}

// runPipedREPL drains stdin line by line (no readline history/editing),
// used when stdin isn't a terminal — e.g. "csql -datadir d < script.sql".
func runPipedREPL(conn *corvusdb.Connection, state *shellState, format string) {
	scanner := bufio.NewScanner(os.Stdin)
	var buf strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "\\") {
			handleLocalCommand(strings.TrimSpace(line), state)
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
		if strings.HasSuffix(strings.TrimSpace(line), ";") {
			execAndPrint(conn, state, buf.String(), format)
			buf.Reset()
		}
	}
}

func runInteractiveREPL(conn *corvusdb.Connection, state *shellState, format string) {
	fmt.Printf("corvus-shell (csql) v%s — connected to an embedded corvusdb instance\n", version)
	fmt.Println("Type \\h for help, \\q to quit.")
	fmt.Println()

	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = home + "/.corvus_history"
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              promptFor(false),
		HistoryFile:         historyFile,
		InterruptPrompt:     "^C",
		EOFPrompt:           "\\q",
		AutoComplete:        completer(),
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, errorColor("csql: readline unavailable, falling back to plain input: "+err.Error()))
		runPipedREPL(conn, state, format)
		return
	}
	defer rl.Close()

	var buf strings.Builder
	inContinuation := false
	for {
		if inContinuation {
			rl.SetPrompt(promptFor(true))
		} else {
			rl.SetPrompt(promptFor(false))
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				buf.Reset()
				inContinuation = false
				continue
			}
			break // io.EOF
		}
		trimmed := strings.TrimSpace(line)

		if !inContinuation && strings.HasPrefix(trimmed, "\\") {
			if trimmed == "\\q" || trimmed == "\\quit" {
				break
			}
			handleLocalCommand(trimmed, state)
			continue
		}
		if trimmed == "" {
			continue
		}

		buf.WriteString(line)
		buf.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			execAndPrint(conn, state, buf.String(), format)
			buf.Reset()
			inContinuation = false
		} else {
			inContinuation = true
		}
	}
	fmt.Println("bye")
}

func promptFor(continuation bool) string {
	if continuation {
		return dimColor("    -> ")
	}
	return infoColor("corvus") + dimColor("> ")
}

func filterInput(r rune) (rune, bool) {
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}

var completionWords = []string{
	"\\q", "\\quit", "\\h", "\\help", "\\timing", "\\x", "\\checkpoint", "\\!",
	"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER", "TABLE",
	"BEGIN", "COMMIT", "ROLLBACK", "PREPARE", "EXECUTE", "DEALLOCATE",
	"FROM", "WHERE", "AND", "OR", "NOT", "ORDER", "BY", "GROUP", "HAVING",
	"LIMIT", "OFFSET", "JOIN", "LEFT", "RIGHT", "INNER", "ON", "AS", "VALUES",
	"INT", "BIGINT", "SMALLINT", "TINYINT", "TEXT", "VARCHAR", "BOOLEAN",
	"FLOAT", "DOUBLE", "TIMESTAMP", "DATE", "CASCADE", "IF", "EXISTS",
}

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, len(completionWords))
	for i, w := range completionWords {
		items[i] = readline.PcItem(w)
	}
	return readline.NewPrefixCompleter(items...)
}

func handleLocalCommand(cmd string, state *shellState) {
	switch {
	case cmd == "\\h" || cmd == "\\help":
		printUsage()
	case cmd == "\\timing":
		state.timing = !state.timing
		fmt.Println("timing is", onOff(state.timing))
	case cmd == "\\x":
		state.expanded = !state.expanded
		fmt.Println("expanded display is", onOff(state.expanded))
	case cmd == "\\checkpoint":
		fmt.Println(dimColor("(\\checkpoint needs a live *corvusdb.Database handle; run from Go code or omit for auto-checkpoint-on-close)"))
	case strings.HasPrefix(cmd, "\\!"):
		shellOut(strings.TrimSpace(strings.TrimPrefix(cmd, "\\!")))
	default:
		fmt.Println(errorColor("unknown command: " + cmd + " (try \\h)"))
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func shellOut(cmdline string) {
	if cmdline == "" {
		return
	}
	proc := exec.Command("/bin/sh", "-c", cmdline)
	proc.Stdout, proc.Stderr, proc.Stdin = os.Stdout, os.Stderr, os.Stdin
	if err := proc.Run(); err != nil {
		fmt.Println(errorColor(fmt.Sprintf("command failed: %v", err)))
	}
}

func execAndPrint(conn *corvusdb.Connection, state *shellState, sql string, format string) {
	sql = strings.TrimSpace(sql)
	if sql == "" || sql == ";" {
		return
	}
	start := time.Now()
	res, err := conn.Query(sql)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Println(errorColor("ERROR: " + err.Error()))
		return
	}
	printResult(res, format == "expanded" || state.expanded)
	if state.timing {
		fmt.Println(dimColor(fmt.Sprintf("Time: %v", elapsed)))
	}
}

// printResult renders a corvusdb.QueryResult either as a box-drawn grid
// (the default) or as one "column | value" line per field (expanded,
// psql's \x).
func printResult(res *corvusdb.QueryResult, expanded bool) {
	if len(res.Columns) == 0 {
		fmt.Println(successColor(fmt.Sprintf("OK (%d row(s) affected)", res.RowsAffected)))
		return
	}
	if len(res.Rows) == 0 {
		fmt.Println(dimColor("(0 rows)"))
		return
	}
	if expanded {
		printExpanded(res)
		return
	}
	printTable(res)
}

func printExpanded(res *corvusdb.QueryResult) {
	for i, row := range res.Rows {
		fmt.Printf("-[ row %d ]-\n", i+1)
		width := 0
		for _, c := range res.Columns {
			if len(c) > width {
				width = len(c)
			}
		}
		for j, v := range row {
			fmt.Printf("%-*s | %s\n", width, res.Columns[j], v.GoString())
		}
	}
	fmt.Println(successColor(fmt.Sprintf("(%d row(s))", len(res.Rows))))
}

const (
	topLeft     = "┌"
	topRight    = "┐"
	bottomLeft  = "└"
	bottomRight = "┘"
	horiz       = "─"
	vert        = "│"
	topT        = "┬"
	bottomT     = "┴"
	leftT       = "├"
	rightT      = "┤"
	cross       = "┼"
)

func printTable(res *corvusdb.QueryResult) {
	cells := make([][]string, len(res.Rows)+1)
	cells[0] = append([]string(nil), res.Columns...)
	for i, row := range res.Rows {
		line := make([]string, len(row))
		for j, v := range row {
			line[j] = v.GoString()
		}
		cells[i+1] = line
	}

	numCols := len(res.Columns)
	widths := make([]int, numCols)
	for i := range widths {
		widths[i] = 3
	}
	for _, row := range cells {
		for i, cell := range row {
			if i < numCols && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	border := func(left, mid, right string) string {
		parts := make([]string, numCols)
		for i, w := range widths {
			parts[i] = strings.Repeat(horiz, w+2)
		}
		return left + strings.Join(parts, mid) + right
	}

	fmt.Println()
	fmt.Println(dimColor(border(topLeft, topT, topRight)))
	printRow(cells[0], widths, true)
	if len(cells) > 1 {
		fmt.Println(dimColor(border(leftT, cross, rightT)))
	}
	for _, row := range cells[1:] {
		printRow(row, widths, false)
	}
	fmt.Println(dimColor(border(bottomLeft, bottomT, bottomRight)))

	n := len(res.Rows)
	if n == 1 {
		fmt.Println(successColor("  1 row returned"))
	} else {
		fmt.Println(successColor(fmt.Sprintf("  %d rows returned", n)))
	}
	fmt.Println()
}

func printRow(row []string, widths []int, header bool) {
	parts := make([]string, len(widths))
	for i := range widths {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		padded := fmt.Sprintf(" %-*s ", widths[i], val)
		if header {
			padded = highlightColor(padded)
		}
		parts[i] = padded
	}
	fmt.Println(dimColor(vert) + strings.Join(parts, dimColor(vert)) + dimColor(vert))
}
