package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pointsto/relnet/internal/buildinfo"
	"github.com/pointsto/relnet/pkg/pointsto"
)

var (
	version    = "dev"
	commitHash = "n/a"
	buildDate  = "<unknown>"
)

func main() {
	var programFile string
	var verbosity, maxRounds int

	flag.StringVar(&programFile, "program", "",
		"YAML program description: variables, objects, allocs and assigns.")
	flag.IntVar(&maxRounds, "max-rounds", 0,
		"Abort after this many fixpoint rounds. Zero means unbounded.")
	flag.IntVar(&verbosity, "v", 0, "Log verbosity level.")
	flag.Parse()

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	zc.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	z, err := zc.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot set up logging: %v\n", err)
		os.Exit(1)
	}
	logger := zapr.NewLogger(z)
	setupLog := logger.WithName("setup")

	buildInfo := buildinfo.BuildInfo{Version: version, CommitHash: commitHash, BuildDate: buildDate}
	setupLog.Info(fmt.Sprintf("starting relnet %s", buildInfo.String()))

	if programFile == "" {
		fmt.Fprintln(os.Stderr, "no program given, use -program <file>")
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(programFile)
	if err != nil {
		setupLog.Error(err, "cannot read program file", "file", programFile)
		os.Exit(1)
	}

	program, err := pointsto.ParseProgram(data)
	if err != nil {
		setupLog.Error(err, "cannot parse program", "file", programFile)
		os.Exit(1)
	}

	analysis, err := pointsto.New(program, pointsto.Options{
		Logger:    logger,
		MaxRounds: maxRounds,
	})
	if err != nil {
		setupLog.Error(err, "cannot assemble propagation network")
		os.Exit(1)
	}

	rounds, err := analysis.Run()
	if err != nil {
		setupLog.Error(err, "analysis failed")
		os.Exit(1)
	}
	setupLog.Info("reached quiescence", "rounds", rounds)

	variables := make([]string, len(program.Variables))
	copy(variables, program.Variables)
	sort.Strings(variables)

	pt := analysis.PointsTo()
	for _, v := range variables {
		objs, ok := pt.Lookup(v)
		if !ok {
			continue
		}
		fmt.Printf("%s -> {%s}\n", v, strings.Join(objs, ", "))
	}
}
