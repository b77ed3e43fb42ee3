// Package cmd implements the spellart command-line frontend: compile,
// search, info, and graph, per SPEC_FULL.md §6. Grounded on the teacher's
// root main.go Command-enum dispatch shape, generalized from its four
// storage-engine commands to this project's four index-pipeline ones, and
// on go.uber.org/zap for structured logging (the wider example pack's
// logging choice; the teacher repo itself logs nothing, but SPEC_FULL.md's
// AMBIENT STACK calls for structured logging regardless).
package cmd

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spellart/spellart/artcompiler"
	"github.com/spellart/spellart/artsearch"
	"github.com/spellart/spellart/bloom"
	"github.com/spellart/spellart/dictionary"
	"github.com/spellart/spellart/distance"
	"github.com/spellart/spellart/procmem"
	"go.uber.org/zap"
)

// Command identifies one of the four subcommands this binary serves.
type Command int

const (
	CommandUnknown Command = iota
	CommandCompile
	CommandSearch
	CommandInfo
	CommandGraph
)

func parseCommand(name string) Command {
	switch name {
	case "compile":
		return CommandCompile
	case "search":
		return CommandSearch
	case "info":
		return CommandInfo
	case "graph":
		return CommandGraph
	default:
		return CommandUnknown
	}
}

// Run dispatches args (typically os.Args[1:]) to the matching subcommand
// and returns a process exit code. It installs the process memory cap
// before constructing any core object, per §6's ordering requirement.
func Run(args []string) int {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if err := procmem.ApplyDefault(); err != nil {
		logger.Error("apply process memory cap", zap.Error(err))
		return 1
	}

	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: spellart <compile|search|info|graph> ...")
		return 1
	}

	switch parseCommand(args[0]) {
	case CommandCompile:
		return runCompile(logger, args[1:])
	case CommandSearch:
		return runSearch(logger, args[1:])
	case CommandInfo:
		return runInfo(logger, args[1:])
	case CommandGraph:
		return runGraph(logger, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		return 1
	}
}

func runCompile(logger *zap.Logger, args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	bloomPath := fs.String("bloom", "", "optional path to write a bloom filter membership prefilter alongside the index")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: spellart compile [-bloom=<path>] <dict_path> <out_path>")
		return 1
	}
	dictPath, outPath := fs.Arg(0), fs.Arg(1)

	dictFile, err := os.Open(dictPath)
	if err != nil {
		logger.Error("open dictionary", zap.String("path", dictPath), zap.Error(err))
		return 1
	}
	defer dictFile.Close()

	rawEntries, err := dictionary.Read(dictFile)
	if err != nil {
		logger.Error("read dictionary", zap.Error(err))
		return 1
	}

	staging := dictionary.NewStaging()
	for _, e := range rawEntries {
		staging.Put(e.Word, e.Frequency)
	}
	entries := staging.Entries()

	compiler, err := artcompiler.New(outPath)
	if err != nil {
		logger.Error("create compiler output", zap.String("path", outPath), zap.Error(err))
		return 1
	}

	for _, e := range entries {
		if err := compiler.Add([]byte(e.Word), e.Frequency); err != nil {
			logger.Error("add word", zap.String("word", e.Word), zap.Error(err))
			os.Remove(outPath)
			return 1
		}
	}
	if err := compiler.Build(); err != nil {
		logger.Error("build index", zap.Error(err))
		os.Remove(outPath)
		return 1
	}

	if *bloomPath != "" {
		words := make([][]byte, len(entries))
		for i, e := range entries {
			words[i] = []byte(e.Word)
		}
		if err := bloom.Save(bloom.NewFromWords(words), *bloomPath); err != nil {
			logger.Error("write bloom filter", zap.String("path", *bloomPath), zap.Error(err))
			return 1
		}
		logger.Info("wrote bloom filter", zap.String("path", *bloomPath))
	}

	logger.Info("compiled index",
		zap.String("dictionary", dictPath),
		zap.String("index", outPath),
		zap.Int("words", len(entries)),
	)
	return 0
}

type queryResult struct {
	Word     string `json:"word"`
	Freq     uint32 `json:"freq"`
	Distance int    `json:"distance"`
}

func runSearch(logger *zap.Logger, args []string) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	bitparallel := fs.Bool("bitparallel", true, "use the bit-parallel oracle when the word is short enough; disable to always use the DP oracle")
	bloomPath := fs.String("bloom", "", "optional path to a bloom filter written by compile -bloom, consulted before each exact-match (max distance 0) query")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: spellart search [-bitparallel=false] [-bloom=<path>] <index_path>")
		return 1
	}

	var filter *bloom.Filter
	if *bloomPath != "" {
		f, err := bloom.Load(*bloomPath)
		if err != nil {
			logger.Error("load bloom filter", zap.String("path", *bloomPath), zap.Error(err))
			return 1
		}
		filter = f
	}

	searcher, err := artsearch.Open(fs.Arg(0))
	if err != nil {
		logger.Error("open index", zap.Error(err))
		return 1
	}
	defer searcher.Close()

	in := bufio.NewScanner(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for in.Scan() {
		line := in.Text()
		fields := strings.Fields(line)
		if len(fields) != 3 {
			logger.Error("unparseable query line", zap.String("line", line))
			return 1
		}

		maxDistance, err := strconv.Atoi(fields[1])
		if err != nil || maxDistance < 0 {
			logger.Error("invalid max_distance", zap.String("line", line))
			return 1
		}
		word := []byte(fields[2])

		if filter != nil && maxDistance == 0 && !filter.MayContain(word) {
			fmt.Fprintln(out, "[]")
			continue
		}

		var oracle distance.Oracle
		if *bitparallel && distance.Allows(word, maxDistance) {
			oracle = distance.NewBitParallel()
		} else {
			oracle = distance.NewDP()
		}
		oracle.Reset(word)

		results, err := searcher.Search(oracle, maxDistance)
		if err != nil {
			logger.Error("search", zap.ByteString("word", word), zap.Error(err))
			return 1
		}

		payload := make([]queryResult, len(results))
		for i, r := range results {
			payload[i] = queryResult{Word: string(r.Word), Freq: r.Frequency, Distance: r.Distance}
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			logger.Error("encode results", zap.Error(err))
			return 1
		}
		fmt.Fprintln(out, string(encoded))
	}
	if err := in.Err(); err != nil {
		logger.Error("read query input", zap.Error(err))
		return 1
	}
	return 0
}

type indexInfo struct {
	Words       int `json:"words"`
	Nodes       int `json:"nodes"`
	Height      int `json:"height"`
	LongestWord int `json:"longest_word"`
}

func runInfo(logger *zap.Logger, args []string) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: spellart info <index_path>")
		return 1
	}

	searcher, err := artsearch.Open(fs.Arg(0))
	if err != nil {
		logger.Error("open index", zap.Error(err))
		return 1
	}
	defer searcher.Close()

	words, err := searcher.WordCount()
	if err != nil {
		logger.Error("word count", zap.Error(err))
		return 1
	}
	nodes, err := searcher.NodeCount()
	if err != nil {
		logger.Error("node count", zap.Error(err))
		return 1
	}
	height, err := searcher.Height()
	if err != nil {
		logger.Error("height", zap.Error(err))
		return 1
	}
	longest, err := searcher.LongestWord()
	if err != nil {
		logger.Error("longest word", zap.Error(err))
		return 1
	}

	encoded, err := json.MarshalIndent(indexInfo{
		Words: words, Nodes: nodes, Height: height, LongestWord: longest,
	}, "", "  ")
	if err != nil {
		logger.Error("encode info", zap.Error(err))
		return 1
	}
	fmt.Println(string(encoded))
	return 0
}

func runGraph(logger *zap.Logger, args []string) int {
	fs := flag.NewFlagSet("graph", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: spellart graph <index_path>")
		return 1
	}

	searcher, err := artsearch.Open(fs.Arg(0))
	if err != nil {
		logger.Error("open index", zap.Error(err))
		return 1
	}
	defer searcher.Close()

	dot, err := searcher.Graph()
	if err != nil {
		logger.Error("render graph", zap.Error(err))
		return 1
	}
	fmt.Print(dot)
	return 0
}
