package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mpgigat/actas-repfora/clients"
	"github.com/mpgigat/actas-repfora/config"
	"github.com/mpgigat/actas-repfora/logging"
	"github.com/mpgigat/actas-repfora/output"
	"github.com/mpgigat/actas-repfora/store"
	"github.com/mpgigat/actas-repfora/suggest"
)

// Dependencies are resolved once per invocation before any command runs.
// Fields already set (as in tests) are kept.
type Dependencies struct {
	Config *config.Root
	Store  store.Store
	Logger *logrus.Logger
	In     io.Reader
	Out    io.Writer

	configFile string
	ownsStore  bool
}

func (d *Dependencies) init(cmd *cobra.Command) error {
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Config == nil {
		c, err := config.Load(d.configFile, cmd.Flags())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		d.Config = c
	}
	if d.Logger == nil {
		d.Logger = logging.New(logging.Config{
			Level:  d.Config.Pipeline.LogLvl,
			Format: d.Config.Pipeline.LogFormat,
		})
	}
	if d.Store == nil {
		s, err := store.Open(store.Options{
			Backend:    d.Config.Storage.Backend,
			Dir:        d.Config.Storage.Dir,
			SQLitePath: d.Config.Storage.SQLitePath,
		})
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		d.Store = s
		d.ownsStore = true
	}
	return nil
}

// Close releases the store opened by the root command. It is safe to call
// more than once; cobra skips the post-run hook when a command fails, so
// main closes again on the way out.
func (d *Dependencies) Close() error {
	if !d.ownsStore || d.Store == nil {
		return nil
	}
	d.ownsStore = false
	return d.Store.Close()
}

func (d *Dependencies) formatter() *output.Formatter {
	return output.NewFormatter(d.Out)
}

func (d *Dependencies) extractor() suggest.Extractor {
	return suggest.NewChain(
		clients.NewHTTP(),
		d.Config.Services.NLP.URL,
		d.Config.Transcription.Language,
		logging.Component(d.Logger, "suggest"),
	)
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "actas",
		Short:         "Transcribe meetings into speaker-attributed minutes",
		Long:          "Transcribes meeting audio, attributes every turn to a persistent speaker identity and manages the names shown for those speakers.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return deps.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return deps.Close()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&deps.configFile, "config", "", "Config file (default config/$CONFIG_ENV/config.yaml)")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("storage-backend", "", "Registry storage: json, sqlite or memory")
	pf.String("storage-dir", "", "Directory holding the JSON registries")

	rootCmd.AddCommand(NewTranscribeCmd(deps))
	rootCmd.AddCommand(NewPrepareCmd(deps))
	rootCmd.AddCommand(NewSpeakersCmd(deps))
	rootCmd.AddCommand(NewSuggestCmd(deps))
	rootCmd.AddCommand(NewCombineCmd(deps))
	rootCmd.AddCommand(NewReglamentoCmd(deps))
	rootCmd.AddCommand(NewConfigCmd(deps))

	return rootCmd
}
