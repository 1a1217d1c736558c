package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tphx/hilbpix"
)

var (
	encrypt   *bool
	decrypt   *bool
	input     string
	output    string
	dir       string
	outDir    string
	offset    string
	workers   *int
	curveFile string
	saveCurve string
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	encrypt = flag.Bool("e", false, "scramble pixels")
	decrypt = flag.Bool("d", false, "restore pixels")
	flag.StringVar(&input, "i", "", "single input image (batch over -dir when empty)")
	flag.StringVar(&output, "o", "", "output path for -i (defaults to in-place)")
	flag.StringVar(&dir, "dir", "files", "directory of images to process")
	flag.StringVar(&outDir, "out", "", "output directory (in-place when empty)")
	flag.StringVar(&offset, "offset", hilbpix.AutoOffset, "cyclic shift: \"auto\" or a number")
	workers = flag.Int("workers", runtime.NumCPU(), "parallel image workers")
	flag.StringVar(&curveFile, "curve", "", "pre-generated curve file to preload (gzip)")
	flag.StringVar(&saveCurve, "save-curve", "", "write the generated curve here (single-file mode)")
	debug := flag.Bool("debug", false, "sets log level to debug")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func main() {
	if *encrypt == *decrypt {
		fmt.Fprintln(os.Stderr, "exactly one of -e or -d is required")
		flag.Usage()
		os.Exit(2)
	}
	direction := hilbpix.Encrypt
	if *decrypt {
		direction = hilbpix.Decrypt
	}

	cache := hilbpix.NewCurveCache()
	if curveFile != "" {
		curve, err := hilbpix.LoadCurve(curveFile)
		if err != nil {
			log.Fatal().Err(err).Msgf("curve file %s is invalid", curveFile)
		}
		cache.Put(curve)
		log.Debug().Msgf("preloaded %dx%d curve from %s", curve.Width, curve.Height, curveFile)
	}

	opts := hilbpix.Options{
		Direction: direction,
		Offset:    offset,
		Workers:   *workers,
		OutDir:    outDir,
		Cache:     cache,
	}

	if input != "" {
		runSingle(opts, cache)
		return
	}
	runBatch(opts)
}

func runSingle(opts hilbpix.Options, cache *hilbpix.CurveCache) {
	dst := output
	if dst == "" {
		dst = hilbpix.OutputPath(input, "")
	}
	res := hilbpix.ProcessFile(input, dst, opts, log.Logger)
	if res.Err != nil {
		log.Fatal().Err(res.Err).Msgf("failed to process %s", input)
	}
	if saveCurve != "" {
		curve, err := cache.Get(res.Width, res.Height)
		if err != nil {
			log.Fatal().Err(err).Msg("curve unavailable")
		}
		if err = hilbpix.SaveCurve(saveCurve, curve); err != nil {
			log.Fatal().Err(err).Msgf("cannot save curve to %s", saveCurve)
		}
		log.Info().Msgf("saved %dx%d curve to %s", curve.Width, curve.Height, saveCurve)
	}
}

func runBatch(opts hilbpix.Options) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Msgf("cannot create %s", dir)
		}
		log.Info().Msgf("created folder %s, put images there and rerun", dir)
		return
	}

	files, err := hilbpix.ScanDir(dir)
	if err != nil {
		log.Fatal().Err(err).Msg("scan failed")
	}
	if len(files) == 0 {
		log.Error().Msgf("no supported images in %s", dir)
		log.Info().Msgf("supported formats: %v", hilbpix.SupportedExtensions())
		os.Exit(1)
	}

	if opts.OutDir != "" {
		if err = os.MkdirAll(opts.OutDir, 0o755); err != nil {
			log.Fatal().Err(err).Msgf("cannot create %s", opts.OutDir)
		}
	}

	start := time.Now()
	report := hilbpix.ProcessFiles(files, opts, log.Logger)
	log.Info().Dur("elapsed", time.Since(start)).Msg(report.Summary())
	if report.Failed > 0 {
		os.Exit(1)
	}
}
