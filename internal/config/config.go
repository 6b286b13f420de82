// Package config loads options for running analyses from flags, environment
// variables, and an optional config file.
package config

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zephyrtronium/uncertainty"
	"github.com/zephyrtronium/uncertainty/expr"
)

// EnvPrefix is the prefix of environment variables that set options.
const EnvPrefix = "UNCERTAINTY_"

// Output formats.
const (
	OutputText = "text"
	OutputYAML = "yaml"
)

// Options are the settings of an analysis run.
type Options struct {
	// Precision is the number of significant decimal digits in every
	// computed value.
	Precision int `mapstructure:"precision" yaml:"precision"`
	// TNP is the coverage coefficient as decimal text. It is ignored when
	// Confidence is set.
	TNP string `mapstructure:"tnp" yaml:"tnp"`
	// Confidence is a confidence level in (0, 1) from which each measured
	// variable's coverage coefficient is found, or 0 to use TNP.
	Confidence float64 `mapstructure:"confidence" yaml:"confidence"`
	// Scale is the power of ten by which results and errors are multiplied
	// for display.
	Scale int `mapstructure:"scale" yaml:"scale"`
	// Output is the report format, "text" or "yaml".
	Output string `mapstructure:"output" yaml:"output"`
	// LogLevel is the minimum level of log messages.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

var defaultOptions = Options{
	Precision:  expr.DefaultDigits,
	TNP:        "1",
	Confidence: 0,
	Scale:      0,
	Output:     OutputText,
	LogLevel:   "warn",
}

// NewDefaultOptions returns a copy of the default options.
func NewDefaultOptions() *Options {
	o := defaultOptions
	return &o
}

// New creates a viper instance with the default options and environment
// bindings for every option.
func New() (*viper.Viper, error) {
	v := viper.New()
	if err := bindEnvs(v); err != nil {
		return nil, fmt.Errorf("failed to bind options to env vars: %w", err)
	}
	return v, nil
}

// Flags adds a flag for each option to fs. Unset flags do not override other
// sources.
func Flags(fs *pflag.FlagSet) {
	d := defaultOptions
	fs.Int("precision", d.Precision, "significant decimal digits in computed values")
	fs.String("tnp", d.TNP, "coverage coefficient for measured errors")
	fs.Float64("confidence", d.Confidence, "confidence level for Student's t coverage coefficients, instead of tnp")
	fs.Int("scale", d.Scale, "power of ten applied to displayed results and errors")
	fs.StringP("output", "o", d.Output, "report format: text or yaml")
	fs.String("log-level", d.LogLevel, "minimum log level")
}

// BindFlags makes flags in fs added by Flags sources for v.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range keys() {
		f := fs.Lookup(strings.ReplaceAll(key, "_", "-"))
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", f.Name, err)
		}
	}
	return nil
}

// Load reads options from v, plus configFile if it is not empty, and
// validates them.
func Load(v *viper.Viper, configFile string) (*Options, error) {
	o := NewDefaultOptions()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	var metadata mapstructure.Metadata
	if err := v.Unmarshal(o, func(c *mapstructure.DecoderConfig) { c.Metadata = &metadata }); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	var errs *multierror.Error
	for _, k := range metadata.Unused {
		errs = multierror.Append(errs, fmt.Errorf("unknown option %q in %s", k, configFile))
	}
	if err := o.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return o, nil
}

// Validate checks every option and reports all problems together.
func (o *Options) Validate() error {
	var errs *multierror.Error
	if o.Precision <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("precision must be positive, not %d", o.Precision))
	}
	if _, err := o.Coverage(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if o.Confidence != 0 && !(o.Confidence > 0 && o.Confidence < 1) {
		errs = multierror.Append(errs, fmt.Errorf("confidence must be between 0 and 1, not %v", o.Confidence))
	}
	switch o.Output {
	case OutputText, OutputYAML:
	default:
		errs = multierror.Append(errs, fmt.Errorf("unknown output format %q", o.Output))
	}
	if _, err := o.Level(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}

// Coverage parses the coverage coefficient.
func (o *Options) Coverage() (*big.Float, error) {
	tnp, err := uncertainty.ParseFloat(o.TNP)
	if err != nil {
		return nil, fmt.Errorf("bad tnp %q: %w", o.TNP, err)
	}
	if tnp.Sign() < 0 {
		return nil, fmt.Errorf("tnp must not be negative, not %s", o.TNP)
	}
	return tnp, nil
}

// Level parses the log level.
func (o *Options) Level() (zerolog.Level, error) {
	l, err := zerolog.ParseLevel(o.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("bad log level %q: %w", o.LogLevel, err)
	}
	return l, nil
}

// EngineOptions converts validated options to engine options.
func (o *Options) EngineOptions() ([]uncertainty.Option, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	opts := []uncertainty.Option{uncertainty.Digits(o.Precision)}
	if o.Confidence != 0 {
		return append(opts, uncertainty.Confidence(o.Confidence)), nil
	}
	tnp, _ := o.Coverage()
	return append(opts, uncertainty.Coverage(tnp)), nil
}

// keys lists the option keys from the mapstructure tags of Options.
func keys() []string {
	t := reflect.TypeOf(Options{})
	r := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag, ok := t.Field(i).Tag.Lookup("mapstructure")
		if !ok || tag == "-" {
			continue
		}
		key, _, _ := strings.Cut(tag, ",")
		r = append(r, key)
	}
	return r
}

// bindEnvs adds a default and an environment variable binding for each option.
func bindEnvs(v *viper.Viper) error {
	d := reflect.ValueOf(defaultOptions)
	for i, key := range keys() {
		v.SetDefault(key, d.Field(i).Interface())
		env := EnvPrefix + strings.ToUpper(key)
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind option %q to env var %q: %w", key, env, err)
		}
	}
	return nil
}
