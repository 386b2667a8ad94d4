package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/eval"
)

// EnvPrefix prefixes environment overrides, e.g. POSETRACK_SOLVER_MODE.
const EnvPrefix = "POSETRACK"

// #region config-types
// Config is the full runtime configuration.
type Config struct {
	OutputDir   string        `yaml:"output_dir" mapstructure:"output_dir"`
	LogLevel    string        `yaml:"log_level" mapstructure:"log_level"`
	MetricsAddr string        `yaml:"metrics_addr" mapstructure:"metrics_addr"`
	Files       FileConfig    `yaml:"files" mapstructure:"files"`
	Solver      SolverConfig  `yaml:"solver" mapstructure:"solver"`
	Replay      ReplayConfig  `yaml:"replay" mapstructure:"replay"`
	Archive     ArchiveConfig `yaml:"archive" mapstructure:"archive"`
}

// FileConfig names the per-run output files: <prefix>_<unix>.<extension>.
type FileConfig struct {
	PosePrefix             string `yaml:"pose_prefix" mapstructure:"pose_prefix"`
	InitialTransformPrefix string `yaml:"initial_transform_prefix" mapstructure:"initial_transform_prefix"`
	EvaluationDataPrefix   string `yaml:"evaluation_data_prefix" mapstructure:"evaluation_data_prefix"`
	EvaluationConfigPrefix string `yaml:"evaluation_config_prefix" mapstructure:"evaluation_config_prefix"`
	Extension              string `yaml:"extension" mapstructure:"extension"`
}

// SolverConfig is the IK solver setup captured in the evaluation config stream.
type SolverConfig struct {
	Mode            int       `yaml:"mode" mapstructure:"mode"`
	WithOrientation bool      `yaml:"with_orientation" mapstructure:"with_orientation"`
	Lambda          []float64 `yaml:"lambda" mapstructure:"lambda"`
	ErrorPosMax     float64   `yaml:"error_pos_max" mapstructure:"error_pos_max"`
	ErrorRotMax     float64   `yaml:"error_rot_max" mapstructure:"error_rot_max"`
	MaxSteps        int       `yaml:"max_steps" mapstructure:"max_steps"`
}

// ReplayConfig selects the pose file to replay and its points per frame.
type ReplayConfig struct {
	File   string `yaml:"file" mapstructure:"file"`
	Points int    `yaml:"points" mapstructure:"points"`
}

// ArchiveConfig locates the SQLite run archive. An empty path disables it.
type ArchiveConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// #endregion config-types

// #region defaults
// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		OutputDir: ".",
		LogLevel:  "info",
		Files: FileConfig{
			PosePrefix:             "positionData",
			InitialTransformPrefix: "initTransRotData",
			EvaluationDataPrefix:   "evaluationData",
			EvaluationConfigPrefix: "evaluationConfig",
			Extension:              "csv",
		},
		Solver: SolverConfig{
			Mode:            0,
			WithOrientation: true,
			// JT, JPI, DLS, SVD, SVD_DLS, SDLS
			Lambda:      []float64{0.35, 0.05, 0.2, 0.03, 0.18, 0.7853981633974483},
			ErrorPosMax: 0.01,
			ErrorRotMax: 0.01,
			MaxSteps:    100,
		},
		Replay: ReplayConfig{
			Points: 1,
		},
	}
}

// Settings converts the solver section for the evaluation recorder.
func (c *Config) Settings() eval.Settings {
	return eval.Settings{
		Mode:            c.Solver.Mode,
		WithOrientation: c.Solver.WithOrientation,
		Lambda:          append([]float64(nil), c.Solver.Lambda...),
		ErrorPosMax:     c.Solver.ErrorPosMax,
		ErrorRotMax:     c.Solver.ErrorRotMax,
		MaxSteps:        c.Solver.MaxSteps,
	}
}

// #endregion defaults

// #region load
// Load reads configuration from path (YAML) layered over the defaults, with
// POSETRACK_* environment overrides. An empty path reads only defaults and
// environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("metrics_addr", d.MetricsAddr)
	v.SetDefault("files.pose_prefix", d.Files.PosePrefix)
	v.SetDefault("files.initial_transform_prefix", d.Files.InitialTransformPrefix)
	v.SetDefault("files.evaluation_data_prefix", d.Files.EvaluationDataPrefix)
	v.SetDefault("files.evaluation_config_prefix", d.Files.EvaluationConfigPrefix)
	v.SetDefault("files.extension", d.Files.Extension)
	v.SetDefault("solver.mode", d.Solver.Mode)
	v.SetDefault("solver.with_orientation", d.Solver.WithOrientation)
	v.SetDefault("solver.lambda", d.Solver.Lambda)
	v.SetDefault("solver.error_pos_max", d.Solver.ErrorPosMax)
	v.SetDefault("solver.error_rot_max", d.Solver.ErrorRotMax)
	v.SetDefault("solver.max_steps", d.Solver.MaxSteps)
	v.SetDefault("replay.file", d.Replay.File)
	v.SetDefault("replay.points", d.Replay.Points)
	v.SetDefault("archive.db_path", d.Archive.DBPath)
}

// #endregion load

// #region validate
// Validate checks the fields the streams depend on.
func (c *Config) Validate() error {
	var errs []error
	if c.Files.PosePrefix == "" || c.Files.InitialTransformPrefix == "" ||
		c.Files.EvaluationDataPrefix == "" || c.Files.EvaluationConfigPrefix == "" {
		errs = append(errs, errors.New("file prefixes cannot be empty"))
	}
	if c.Solver.Mode < 0 || c.Solver.Mode >= len(c.Solver.Lambda) {
		errs = append(errs, fmt.Errorf("solver mode %d has no lambda (have %d)", c.Solver.Mode, len(c.Solver.Lambda)))
	}
	if c.Solver.MaxSteps <= 0 {
		errs = append(errs, errors.New("solver max_steps must be positive"))
	}
	if c.Replay.Points < 0 {
		errs = append(errs, errors.New("replay points cannot be negative"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// #endregion validate

// #region save
// Save writes c as YAML to path, creating parent directories.
func Save(c *Config, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := Marshal(c)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Marshal renders c as YAML.
func Marshal(c *Config) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// #endregion save
