package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	xnapgo "github.com/thebagchi/xnap-go"
	"github.com/thebagchi/xnap-go/lib/config"
	"github.com/thebagchi/xnap-go/lib/ie"
	"github.com/thebagchi/xnap-go/lib/per"
	"github.com/thebagchi/xnap-go/lib/xnap"
)

type options struct {
	config    string
	logLevel  string
	logFormat string
	unaligned bool

	cfg    *config.Config
	logger *logrus.Logger
}

func newRootCommand() *cobra.Command {
	opts := &options{logger: logrus.New()}
	cmd := &cobra.Command{
		Use:           "xnapc",
		Short:         "Decode and encode XnAP messages (APER, TS 38.423)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd.Flags())
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.config, "config", "", "TOML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (text, json)")
	flags.BoolVar(&opts.unaligned, "unaligned", false, "use the UNALIGNED variant of PER")

	cmd.AddCommand(newDecodeCommand(opts), newEncodeCommand(opts), newRoundtripCommand(opts))
	return cmd
}

// load reads the configuration file and applies flags given on the command
// line over it.
func (o *options) load(flags *pflag.FlagSet) error {
	cfg := config.Default()
	if o.config != "" {
		var err error
		if cfg, err = config.ParseConfig(o.config); err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if flags.Changed("unaligned") {
		cfg.Codec.Aligned = !o.unaligned
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	return cfg.ConfigureLogger(o.logger)
}

type input struct {
	file     string
	typeName string
}

func (in *input) register(flags *pflag.FlagSet) {
	flags.StringVar(&in.file, "file", "", "hex capture file")
	flags.StringVar(&in.typeName, "type", "pdu", "top level type: "+strings.Join(xnap.TypeNames(), ", "))
}

func (in *input) read(args []string) ([]byte, error) {
	switch {
	case in.file != "" && len(args) > 0:
		return nil, errors.New("give either --file or a hex argument")
	case in.file != "":
		return xnapgo.Parse(in.file)
	case len(args) > 0:
		return xnapgo.ParseString(strings.Join(args, " "))
	}
	return nil, errors.New("input required: --file or a hex argument")
}

func (in *input) value() (per.Value, error) {
	constructor, ok := xnap.Types[in.typeName]
	if !ok {
		return nil, errors.Errorf("unknown type %q, expected one of %s", in.typeName, strings.Join(xnap.TypeNames(), ", "))
	}
	return constructor(), nil
}

// decode decodes data into a new value of the selected type and returns the
// diagnostics collected on the way.
func (o *options) decode(in *input, data []byte) (per.Value, ie.Diagnostics, error) {
	value, err := in.value()
	if err != nil {
		return nil, nil, err
	}
	var (
		issues         []per.Issue
		logger         = logrus.NewEntry(o.logger).WithField("type", in.typeName)
		decoderOptions = append(o.cfg.DecoderOptions(logger), per.CollectIssues(&issues))
	)
	err = per.Unmarshal(data, value, decoderOptions...)
	diagnostics := ie.FromIssues(issues)
	if per.IsWireError(err) {
		return nil, diagnostics, errors.Wrapf(err, "invalid %s encoding", in.typeName)
	}
	if err != nil {
		return nil, diagnostics, err
	}
	if o.cfg.Decode.NotifyIsError {
		for _, item := range diagnostics {
			if item.Criticality == ie.Notify {
				return value, diagnostics, errors.Errorf("%s: id %d not understood", item.Container, item.ID)
			}
		}
	}
	return value, diagnostics, nil
}

func (o *options) encoder() *per.Encoder {
	return per.NewEncoder(o.cfg.Codec.Aligned).WithLogger(logrus.NewEntry(o.logger))
}

func newDecodeCommand(opts *options) *cobra.Command {
	in := &input{}
	cmd := &cobra.Command{
		Use:   "decode [HEX...]",
		Short: "Decode a message and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := in.read(args)
			if err != nil {
				return err
			}
			value, diagnostics, err := opts.decode(in, data)
			printDiagnostics(cmd.ErrOrStderr(), diagnostics)
			if err != nil {
				return err
			}
			text, err := xnap.Dump(value)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	in.register(cmd.Flags())
	return cmd
}

func newEncodeCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a value given on the command line",
	}
	var (
		plmn  string
		gnbID uint32
		bits  int
	)
	gnb := &cobra.Command{
		Use:   "global-gnb-id",
		Short: "Encode a GlobalgNB-ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			plmnID, err := xnap.ParsePLMNIdentity(plmn)
			if err != nil {
				return err
			}
			value := &xnap.GlobalgNBID{PLMNID: plmnID, GNBID: xnap.NewGNBID(gnbID, bits)}
			data, err := per.MarshalWith(opts.encoder(), value)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(data))
			return nil
		},
	}
	flags := gnb.Flags()
	flags.StringVar(&plmn, "plmn", "", "PLMN identity as six hex digits")
	flags.Uint32Var(&gnbID, "gnb-id", 0, "gNB identifier")
	flags.IntVar(&bits, "bits", xnap.GNB_ID_MIN_BITS, "gNB identifier length in bits (22..32)")
	_ = gnb.MarkFlagRequired("plmn")

	cmd.AddCommand(gnb)
	return cmd
}

func newRoundtripCommand(opts *options) *cobra.Command {
	in := &input{}
	cmd := &cobra.Command{
		Use:   "roundtrip [HEX...]",
		Short: "Decode and re-encode a message, failing when the octets differ",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := in.read(args)
			if err != nil {
				return err
			}
			value, diagnostics, err := opts.decode(in, data)
			printDiagnostics(cmd.ErrOrStderr(), diagnostics)
			if err != nil {
				return err
			}
			encoded, err := per.MarshalWith(opts.encoder(), value)
			if err != nil {
				return err
			}
			if !bytes.Equal(encoded, data) {
				return errors.Errorf("re-encoded %x differs from %x", encoded, data)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok", hex.EncodeToString(encoded))
			return nil
		},
	}
	in.register(cmd.Flags())
	return cmd
}

func printDiagnostics(w io.Writer, diagnostics ie.Diagnostics) {
	for _, item := range diagnostics {
		fmt.Fprintf(w, "diagnostic: %s id %d criticality %s %s\n",
			item.Container, item.ID, item.Criticality, item.TypeOfError)
	}
}

// exitCode is 2 when err comes from the input octets and 1 otherwise.
func exitCode(err error) int {
	if per.IsWireError(err) {
		return 2
	}
	return 1
}
