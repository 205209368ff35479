package main

import (
	"fmt"
	"os"

	"github.com/Phonebooth/jesse/cmd/jesse/commands"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		if err := commands.HandleVersion(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "validate":
		if err := commands.HandleValidate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "lint":
		if err := commands.HandleLint(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "generate":
		if err := commands.HandleGenerate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := commands.HandleServe(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mcp":
		if err := commands.HandleMCP(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", suggestion)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		os.Exit(1)
	}
}

// commandNames lists every top-level command, in the order suggestions
// are preferred when edit distances tie.
var commandNames = []string{"validate", "lint", "generate", "serve", "mcp", "version", "help"}

// suggestCommand returns the closest known command within edit distance 2
// of input, or "" when nothing is close enough to suggest.
func suggestCommand(input string) string {
	best := ""
	bestDist := 3
	for _, name := range commandNames {
		if d := editDistance(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// editDistance computes the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func printUsage() {
	fmt.Println(`jesse - JSON Schema validation tools

Usage:
  jesse <command> [options]

Commands:
  validate    Validate a document against a JSON Schema
  lint        Check a schema document for faults and pitfalls
  generate    Generate Go types from JSON Schema documents
  serve       Serve the schema store and validation HTTP API
  mcp         Serve validation tools over the Model Context Protocol
  version     Show version information
  help        Show this help message

Examples:
  jesse validate -s account.json user.json
  jesse validate -s account.json --all --format json user.json
  jesse lint account.json
  jesse generate -o ./types ./schemas
  jesse serve --addr :8080 --schemas ./schemas
  cat user.json | jesse validate -s account.json -

Run 'jesse <command> --help' for more information on a command.`)
}
