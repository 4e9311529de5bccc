package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string // Available options for this command (e.g., "-plies", "-threads")
	Args    []string // Possible argument values (for non-option arguments)
}

// commandMetadata maps command names to their options and arguments
var commandMetadata = map[string]CommandMetadata{
	"analyse": {
		Args: []string{"game", "match", "session"},
	},
	"analyze": {
		Args: []string{"game", "match", "session"},
	},
	"show": {
		Args: []string{"statistics"},
	},
	"export": {
		Args: []string{"game", "match", "session"},
	},
	"db": {
		Options: []string{"-force"},
		Args:    []string{"add", "list", "players", "erase"},
	},
	"setconfig": {
		Args: []string{
			"analysis-moves", "analysis-cube", "analysis-luck", "analysis-limit",
			"analysis-threshold-doubtful", "analysis-threshold-bad",
			"analysis-threshold-verybad", "analysis-threshold-lucky",
			"analysis-threshold-verylucky", "analysis-threshold-unlucky",
			"analysis-threshold-veryunlucky", "analysis-chequer-plies",
			"analysis-cube-plies", "output-mwc", "db-path", "met-file",
		},
	},
	"alias": {
		Args: []string{"set", "delete", "list", "remove", "rm"},
	},
	"help": {
		Args: []string{"analyse", "show", "db", "setconfig"},
	},
}

// Common command names for command completion
var commandNames = []string{
	"help", "alias", "load", "save", "list", "game", "analyse", "analyze",
	"show", "export", "db", "setconfig", "exit",
}

// Common values for certain option types
var boolValues = []string{"true", "false"}

// Do implements the readline.AutoComplete interface
// It provides context-aware autocomplete based on what's been typed
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Get the text up to the cursor position
	text := string(line[:pos])

	// Parse the line using shellquote to handle quoted strings properly
	fields, err := shellquote.Split(text)
	if err != nil {
		// If we can't parse, fall back to simple space splitting
		fields = strings.Fields(text)
	}

	// Check if we're in the middle of typing a word or just after a space
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	// Determine what we're trying to complete
	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		// Completing a command name
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames

		// Also include aliases
		for aliasName := range c.sc.aliases {
			completions = append(completions, aliasName)
		}
	} else {
		// We have a command, now complete its arguments/options
		cmdName := fields[0]

		// Check if this is an alias, and if so, expand it to get the real command
		if aliasValue, isAlias := c.sc.aliases[cmdName]; isAlias {
			aliasFields, err := shellquote.Split(aliasValue)
			if err == nil && len(aliasFields) > 0 {
				cmdName = aliasFields[0]
			}
		}

		if !endsWithSpace && len(fields) > 0 {
			prefix = fields[len(fields)-1]
		}

		// Get the last complete field to check context
		var lastCompleteField string
		if endsWithSpace && len(fields) > 0 {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		// Check if the last field was an option that expects specific values
		if lastCompleteField != "" && strings.HasPrefix(lastCompleteField, "-") {
			optName := strings.TrimPrefix(lastCompleteField, "-")

			switch optName {
			case "force":
				completions = boolValues
			}
		}

		// after "show statistics" offer what to show
		if cmdName == "show" && completions == nil && len(fields) >= 2 &&
			(fields[1] == "statistics" || fields[1] == "stats") &&
			(len(fields) > 2 || endsWithSpace) {
			completions = []string{"game", "match", "session"}
		}

		// If we haven't determined completions yet, show command options/args
		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				// If we're typing something that starts with -, show options
				if strings.HasPrefix(prefix, "-") {
					completions = metadata.Options
				} else {
					// Show args if available, otherwise show options
					if len(metadata.Args) > 0 {
						completions = metadata.Args
					} else {
						completions = metadata.Options
					}
				}
			}
		}
	}

	// Filter completions based on prefix
	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			// Return only the part that needs to be added
			suffix := completion[len(prefix):]
			matches = append(matches, []rune(suffix))
		}
	}

	return matches, len(prefix)
}
