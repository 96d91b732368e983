// Package flags defines the global flags of hdlbuild and their environment variables.
package flags

import (
	"strings"

	"github.com/geckorv/hdlbuild/options"
	"github.com/urfave/cli/v2"
)

// EnvVarPrefix is prepended to the environment variable of every flag.
const EnvVarPrefix = "HDLBUILD_"

const (
	WorkingDirFlagName   = "working-dir"
	ConfigFlagName       = "config"
	LogLevelFlagName     = "log-level"
	LogFormatFlagName    = "log-format"
	NoColorFlagName      = "no-color"
	ParallelismFlagName  = "parallelism"
	ExecutorFlagName     = "executor"
	NinjaCommandFlagName = "ninja"
	KeepGoingFlagName    = "keep-going"
	ForceFlagName        = "force"
	SelfCommandFlagName  = "self-command"

	TraceExporterFlagName             = "telemetry-trace-exporter"
	TraceExporterHTTPEndpointFlagName = "telemetry-trace-exporter-http-endpoint"
	TraceExporterInsecureFlagName     = "telemetry-trace-exporter-insecure-endpoint"
	MetricExporterFlagName            = "telemetry-metric-exporter"
	MetricExporterInsecureFlagName    = "telemetry-metric-exporter-insecure-endpoint"
	TraceParentFlagName               = "telemetry-trace-parent"
)

// EnvVars returns the environment variable bound to a flag, e.g. `HDLBUILD_LOG_LEVEL` for `log-level`.
func EnvVars(name string) []string {
	return []string{EnvVarPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))}
}

// NewGlobalFlags returns the flags shared by all commands.
func NewGlobalFlags(opts *options.BuildOptions) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        WorkingDirFlagName,
			EnvVars:     EnvVars(WorkingDirFlagName),
			Destination: &opts.WorkingDir,
			Usage:       "The directory the project file is searched from. Defaults to the current directory.",
		},
		&cli.StringFlag{
			Name:        ConfigFlagName,
			EnvVars:     EnvVars(ConfigFlagName),
			Destination: &opts.ConfigPath,
			Value:       opts.ConfigPath,
			Usage:       "The project file name, searched in the working directory and its parents, or its path.",
		},
		&cli.StringFlag{
			Name:        LogLevelFlagName,
			EnvVars:     EnvVars(LogLevelFlagName),
			Destination: &opts.LogLevel,
			Value:       opts.LogLevel,
			Usage:       "Log level: trace, debug, info, warn or error.",
		},
		&cli.StringFlag{
			Name:        LogFormatFlagName,
			EnvVars:     EnvVars(LogFormatFlagName),
			Destination: &opts.LogFormat,
			Value:       opts.LogFormat,
			Usage:       "Log format: pretty or key-value, optionally followed by options, e.g. pretty,no-timestamp.",
		},
		&cli.BoolFlag{
			Name:        NoColorFlagName,
			EnvVars:     EnvVars(NoColorFlagName),
			Destination: &opts.LogNoColor,
			Usage:       "Disable colored log output.",
		},
		&cli.IntFlag{
			Name:        ParallelismFlagName,
			Aliases:     []string{"j"},
			EnvVars:     EnvVars(ParallelismFlagName),
			Destination: &opts.Parallelism,
			Usage:       "Maximum number of steps run at the same time. Defaults to the project setting, then half of the CPUs.",
		},
		&cli.StringFlag{
			Name:        ExecutorFlagName,
			EnvVars:     EnvVars(ExecutorFlagName),
			Destination: &opts.Executor,
			Value:       opts.Executor,
			Usage:       "How graphs are executed: " + options.ExecutorNinja + " or " + options.ExecutorPool + ".",
		},
		&cli.StringFlag{
			Name:        NinjaCommandFlagName,
			EnvVars:     EnvVars(NinjaCommandFlagName),
			Destination: &opts.NinjaCommand,
			Value:       opts.NinjaCommand,
			Usage:       "The ninja command line, e.g. \"ninja -v\".",
		},
		&cli.BoolFlag{
			Name:        KeepGoingFlagName,
			Aliases:     []string{"k"},
			EnvVars:     EnvVars(KeepGoingFlagName),
			Destination: &opts.KeepGoing,
			Usage:       "Keep running steps that do not depend on a failed step.",
		},
		&cli.BoolFlag{
			Name:        ForceFlagName,
			EnvVars:     EnvVars(ForceFlagName),
			Destination: &opts.Force,
			Usage:       "Run every step of the " + options.ExecutorPool + " executor, even when its outputs are up to date.",
		},
		&cli.StringFlag{
			Name:        SelfCommandFlagName,
			EnvVars:     EnvVars(SelfCommandFlagName),
			Destination: &opts.SelfCommand,
			Usage:       "Path of the hdlbuild executable the generated graphs call back into. Defaults to the running executable.",
		},
		&cli.StringFlag{
			Name:        TraceExporterFlagName,
			EnvVars:     EnvVars(TraceExporterFlagName),
			Destination: &opts.Telemetry.TraceExporter,
			Usage:       "Trace exporter: none, console, http, otlpHttp or otlpGrpc.",
		},
		&cli.StringFlag{
			Name:        TraceExporterHTTPEndpointFlagName,
			EnvVars:     EnvVars(TraceExporterHTTPEndpointFlagName),
			Destination: &opts.Telemetry.TraceExporterHTTPEndpoint,
			Usage:       "Endpoint of the http trace exporter.",
		},
		&cli.BoolFlag{
			Name:        TraceExporterInsecureFlagName,
			EnvVars:     EnvVars(TraceExporterInsecureFlagName),
			Destination: &opts.Telemetry.TraceExporterInsecureEndpoint,
			Usage:       "Use plain connections for the OTLP trace exporters.",
		},
		&cli.StringFlag{
			Name:        TraceParentFlagName,
			EnvVars:     append(EnvVars(TraceParentFlagName), "TRACEPARENT"),
			Destination: &opts.Telemetry.TraceParent,
			Usage:       "W3C traceparent of the span the build is part of.",
		},
		&cli.StringFlag{
			Name:        MetricExporterFlagName,
			EnvVars:     EnvVars(MetricExporterFlagName),
			Destination: &opts.Telemetry.MetricExporter,
			Usage:       "Metric exporter: none, console, otlpHttp or grpcHttp.",
		},
		&cli.BoolFlag{
			Name:        MetricExporterInsecureFlagName,
			EnvVars:     EnvVars(MetricExporterInsecureFlagName),
			Destination: &opts.Telemetry.MetricExporterInsecureEndpoint,
			Usage:       "Use plain connections for the OTLP metric exporters.",
		},
	}
}
