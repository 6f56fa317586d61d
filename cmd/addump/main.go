package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-ldap/ldap/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"adsift/adclient"
	"adsift/config"
)

var (
	envFile   string
	outPath   string
	rawFilter string
	users     bool
	groups    bool
	computers bool
	pageSize  uint32
	throttle  float64
	jitterPct float64
	verbose   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "addump",
	Short: "Dump directory objects over LDAP into a JSON file adsift reads",
	Long: `addump binds to a domain controller, walks the base DN with paged
searches, and writes every matched object with all attributes to a
JSON dump. Connection settings come from a .env-style file
(LDAP_HOST, LDAP_BASEDN, LDAP_USERNAME, LDAP_PASSWORD,
LDAP_PAGESIZE). Records are flushed per page, so a failed page keeps
everything fetched before it.`,
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
	filter, err := searchFilter()
	if err != nil {
		return err
	}

	cfg, err := config.LoadEnv(envFile)
	if err != nil {
		return err
	}
	if pageSize > 0 {
		cfg.PageSize = pageSize
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	client := adclient.NewClient(cfg.Host, cfg.BaseDN, cfg.PageSize, logger)
	client.Throttle = adclient.Throttle{Delay: throttle, Percent: jitterPct}
	if err := client.Connect(cfg.Username, cfg.Password); err != nil {
		return err
	}
	defer client.Close()

	w := adclient.NewDumpWriter(out)
	total := 0
	err = client.FetchPages(filter, func(entries []*ldap.Entry) error {
		for _, entry := range entries {
			if err := w.Write(adclient.EntryRecord(entry)); err != nil {
				return err
			}
			total++
		}
		return nil
	})
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("dump aborted after %d records: %w", total, err)
	}
	logger.Info("dump complete", zap.Int("records", total), zap.String("filter", filter))
	return nil
}

// searchFilter combines the convenience object selectors with the
// user-supplied filter string.
func searchFilter() (string, error) {
	selected := 0
	for _, on := range []bool{users, groups, computers} {
		if on {
			selected++
		}
	}
	if selected > 1 {
		return "", errors.New("choose at most one of --users, --groups, --computers")
	}

	base := adclient.AllObjects
	switch {
	case users:
		base = adclient.AllUsers
	case groups:
		base = adclient.AllGroups
	case computers:
		base = adclient.AllComputers
	}
	if rawFilter == "" {
		return base, nil
	}
	if selected == 0 {
		return rawFilter, nil
	}
	return adclient.And(adclient.Raw(base), adclient.Raw(rawFilter)).String(), nil
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&envFile, "env-file", "settings.env", "connection settings file")
	f.StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	f.StringVar(&rawFilter, "filter", "", "raw LDAP search filter")
	f.BoolVar(&users, "users", false, "dump user objects only")
	f.BoolVar(&groups, "groups", false, "dump group objects only")
	f.BoolVar(&computers, "computers", false, "dump computer objects only")
	f.Uint32Var(&pageSize, "page-size", 0, "override LDAP_PAGESIZE")
	f.Float64Var(&throttle, "throttle", 0, "seconds to pause between pages (0 disables)")
	f.Float64Var(&jitterPct, "jitter", 0, "percent jitter applied to the throttle pause")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
