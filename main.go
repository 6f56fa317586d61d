package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"adsift/directory"
	"adsift/filter"
	"adsift/report"
)

var (
	exactFilters   []string
	regexFilters   []string
	exprFilters    []string
	quickNames     []string
	quickFile      string
	classTokens    []string
	parentTokens   []string
	categoryTokens []string
	typeTokens     []string

	andMode bool
	notMode bool

	lazyParse  bool
	showBinary bool
	complete   bool

	treeMode     bool
	treeByType   bool
	emailMode    bool
	tallyMode    bool
	wordlistMode bool
	sortField    string
	minLen       int
	maxLen       int

	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "adsift [dump files...]",
	Short: "Query and report over Active Directory enumeration dumps",
	Long: `adsift queries Active Directory enumeration dumps offline.

It reads both the blank-line separated "key: value" block format and
the JSON attribute-record arrays produced by common dump tooling
(addump included), normalizes them into one record shape, applies
exact, regex, expression and quick filters, and renders listings,
email lists, category tallies, membership trees, sorted listings or
frequency-ranked wordlists. With no file arguments it reads stdin.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,
}

func run(cmd *cobra.Command, args []string) error {
	modes := 0
	for _, on := range []bool{treeMode, emailMode, tallyMode, wordlistMode, sortField != ""} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return errors.New("choose at most one of --tree, --emails, --tally, --wordlist, --sort")
	}
	if lazyParse && (treeMode || tallyMode || wordlistMode || sortField != "") {
		return errors.New("--lazy supports only the default listing and --emails; these modes need the whole dump in memory")
	}

	defs := filter.Builtin()
	if quickFile != "" {
		var err error
		defs, err = filter.LoadQuickFilters(quickFile)
		if err != nil {
			return err
		}
	}
	fset, err := filter.Criteria{
		Exact:     exactFilters,
		Regex:     regexFilters,
		Expr:      exprFilters,
		Quick:     quickNames,
		Class:     classTokens,
		Parent:    parentTokens,
		Category:  categoryTokens,
		Type:      typeTokens,
		And:       andMode,
		Not:       notMode,
		QuickDefs: defs,
	}.Compile()
	if err != nil {
		return err
	}

	opts := directory.ParseOptions{Complete: complete, Binary: showBinary}
	var src directory.Source
	if lazyParse {
		if len(args) == 0 {
			src = directory.ParseLazy(os.Stdin, opts)
		} else {
			src = directory.ParseFilesLazy(args, opts)
		}
	} else {
		var set *directory.RecordSet
		if len(args) == 0 {
			set, err = directory.Parse(os.Stdin, opts)
		} else {
			set, err = directory.ParseFiles(args, opts)
		}
		if err != nil {
			return err
		}
		logger.Debug("dump loaded", zap.Int("records", set.Len()))
		src = set
	}

	if !fset.Empty() {
		src = filter.Apply(src, fset)
	}

	out := cmd.OutOrStdout()
	switch {
	case emailMode:
		return report.Emails(out, src)
	case treeMode:
		set, err := directory.Collect(src)
		if err != nil {
			return err
		}
		by := report.GroupCategory
		if treeByType {
			by = report.GroupAccountType
		}
		report.RenderTree(out, report.Tree(set, by))
		return nil
	case tallyMode:
		set, err := directory.Collect(src)
		if err != nil {
			return err
		}
		report.Tally(out, set)
		return nil
	case wordlistMode:
		set, err := directory.Collect(src)
		if err != nil {
			return err
		}
		report.Words(out, report.Wordlist(set, minLen, maxLen))
		return nil
	case sortField != "":
		set, err := directory.Collect(src)
		if err != nil {
			return err
		}
		sorted := directory.NewRecordSet(report.SortRecords(set, sortField)...)
		return report.Listing(out, sorted)
	default:
		return report.Listing(out, src)
	}
}

func init() {
	f := rootCmd.Flags()
	f.StringArrayVarP(&exactFilters, "filter", "f", nil, "exact filter key=value (repeatable; empty or * side matches any)")
	f.StringArrayVarP(&regexFilters, "regex", "r", nil, "regex filter key=pattern, case-insensitive and start-anchored (repeatable)")
	f.StringArrayVarP(&exprFilters, "expr", "e", nil, "expression filter, e.g. 'adminCount == 1 and servicePrincipalName' (repeatable)")
	f.StringArrayVarP(&quickNames, "quick", "q", nil, "named quick filter (repeatable)")
	f.StringVar(&quickFile, "quick-file", "", "YAML file of extra quick filter definitions")
	f.StringArrayVar(&classTokens, "class", nil, "accept records whose most specific objectClass matches (alias or name)")
	f.StringArrayVar(&parentTokens, "parent-class", nil, "accept records carrying the class anywhere in objectClass")
	f.StringArrayVar(&categoryTokens, "category", nil, "accept records whose base category matches (alias or name)")
	f.StringArrayVar(&typeTokens, "type", nil, "filter on samAccountType: user, group, machine or alias")
	f.BoolVar(&andMode, "and", false, "require every filter to match instead of any")
	f.BoolVar(&notMode, "not", false, "negate the combined filter result")
	f.BoolVar(&lazyParse, "lazy", false, "single-pass parse for large dumps; listing and --emails only")
	f.BoolVar(&showBinary, "binary", false, "show binary values as base64 instead of "+directory.BinaryPlaceholder)
	f.BoolVar(&complete, "complete", false, "fail on truncated {...} enumerations instead of stripping the marker")
	f.BoolVar(&treeMode, "tree", false, "print group membership trees")
	f.BoolVar(&treeByType, "tree-by-type", false, "root trees on samAccountType GROUP_OBJECT instead of base category")
	f.BoolVar(&emailMode, "emails", false, "print Name <mail> for user and person records")
	f.BoolVar(&tallyMode, "tally", false, "print per-category record counts")
	f.BoolVar(&wordlistMode, "wordlist", false, "print a frequency-ranked wordlist of record values")
	f.StringVar(&sortField, "sort", "", "sort records by this field, descending")
	f.IntVar(&minLen, "min-len", 3, "wordlist minimum token length")
	f.IntVar(&maxLen, "max-len", 0, "wordlist maximum token length (0 means no limit)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
