// BYZRA ⸻ cmd/tempora/commands.go
// extract, resolve, infer, show and config commands

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"tempora/internal/config"
	"tempora/internal/daemon"
	"tempora/internal/enrich"
	"tempora/internal/media"
	"tempora/internal/report"
	"tempora/internal/resolve"
	"tempora/internal/scan"
	"tempora/internal/store"
	"tempora/internal/tags"
	"tempora/internal/util"
)

// parsed command line of a subcommand
type options struct {
	positional []string
	output     string
	native     bool
	infer      bool
	plain      bool
	flat       bool
	sortBy     string
}

func parseOptions(args []string) (options, error) {
	opts := options{sortBy: "time"}
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-o", "--output":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s needs a path", arg)
			}
			i++
			opts.output = args[i]
		case "--sort":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--sort needs time or path")
			}
			i++
			if args[i] != "time" && args[i] != "path" {
				return opts, fmt.Errorf("unknown sort order %q", args[i])
			}
			opts.sortBy = args[i]
		case "--native":
			opts.native = true
		case "--infer":
			opts.infer = true
		case "--plain":
			opts.plain = true
		case "--flat":
			opts.flat = true
		default:
			if strings.HasPrefix(arg, "-") {
				return opts, fmt.Errorf("unknown option %s", arg)
			}
			opts.positional = append(opts.positional, arg)
		}
	}
	return opts, nil
}

func mustParse(args []string, line string) options {
	opts, err := parseOptions(args)
	if err != nil {
		fmt.Println(util.LBL.Render("[X] " + err.Error()))
		usage(line)
	}
	return opts
}

// cancelled on ctrl-c
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func handleExtractCommand(args []string) {
	const line = "tempora extract <path>... [-o tags.json] [--native] [--flat]"
	opts := mustParse(args, line)
	if len(opts.positional) == 0 {
		fmt.Println(util.LBL.Render("[X] No files or directories specified"))
		usage(line)
	}
	out := opts.output
	if out == "" {
		out = "tags.json"
	}

	ctx, cancel := signalContext()
	defer cancel()

	cfg := loadConfig()
	dicts := extract(ctx, cfg, opts)

	if err := store.SaveTags(out, dicts); err != nil {
		fail("Could not write tags: " + err.Error())
	}
	fmt.Println(util.LBL.Render(fmt.Sprintf("[✓] Wrote tags of %d files to %s", len(dicts), out)))
}

func handleResolveCommand(args []string) {
	const line = "tempora resolve <tags.json> [-o records.json|.db] [--infer] [--sort time|path]"
	opts := mustParse(args, line)
	if len(opts.positional) != 1 {
		fmt.Println(util.LBL.Render("[X] Exactly one tag dump expected"))
		usage(line)
	}

	ctx, cancel := signalContext()
	defer cancel()

	dicts, err := store.LoadTags(opts.positional[0])
	if err != nil {
		fail("Could not load tags: " + err.Error())
	}

	resolveAndSave(ctx, loadConfig(), dicts, opts)
}

func handleRunCommand(args []string) {
	const line = "tempora run <path>... [-o records.json|.db] [--native] [--flat] [--infer] [--sort time|path]"
	opts := mustParse(args, line)
	if len(opts.positional) == 0 {
		fmt.Println(util.LBL.Render("[X] No files or directories specified"))
		usage(line)
	}

	ctx, cancel := signalContext()
	defer cancel()

	cfg := loadConfig()
	resolveAndSave(ctx, cfg, extract(ctx, cfg, opts), opts)
}

// media files named on the command line, directories walked
func collectFiles(ctx context.Context, cfg *config.Config, paths []string, flat bool) []string {
	walker := scan.NewWalker(cfg)
	if flat {
		walker = walker.NonRecursive()
	}
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			fail("Path not found: " + p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := walker.Files(ctx, p)
		if err != nil {
			fail("Could not scan " + p + ": " + err.Error())
		}
		files = append(files, found...)
	}
	return files
}

func extract(ctx context.Context, cfg *config.Config, opts options) []tags.Dictionary {
	files := collectFiles(ctx, cfg, opts.positional, opts.flat)
	if len(files) == 0 {
		fail("No media files found")
	}
	fmt.Println(util.NSH.Render(fmt.Sprintf("[~] Reading tags of %d files", len(files))))

	dicts, errs := readTags(files, opts.native)
	for _, err := range errs {
		fmt.Println(util.SUB.Render("[!] " + err.Error()))
	}
	return dicts
}

// exiftool when available, the native reader otherwise
func readTags(files []string, native bool) ([]tags.Dictionary, []error) {
	if !native {
		et, err := util.NewExifTool()
		if err == nil {
			defer et.Close()
			return et.ExtractWithSpinner("[~] Running exiftool", files...)
		}
		fmt.Println(util.SEC.Render("[!] exiftool unavailable, reading EXIF natively: " + err.Error()))
	}

	var dicts []tags.Dictionary
	var errs []error
	util.SpinWhile("[~] Reading EXIF", func() (string, error) {
		dicts, errs = scan.NativeExtractor{}.Extract(files...)
		return "", nil
	})
	return dicts, errs
}

func newEngine(cfg *config.Config) *resolve.Engine {
	engine, err := resolve.NewEngine(cfg)
	if err != nil {
		fail("Could not build resolver: " + err.Error())
	}
	return engine
}

// per-file failures go to ~/.tempora/logs/tempora.log
func openLog(cfg *config.Config) *daemon.Logger {
	logger, err := daemon.NewLogger(filepath.Join(cfg.Store.LogDir, "tempora.log"), daemon.ParseLevel(cfg.Watch.LogLevel))
	if err != nil {
		fmt.Println(util.SUB.Render("[!] Logging disabled: " + err.Error()))
		return nil
	}
	return logger
}

func resolveAndSave(ctx context.Context, cfg *config.Config, dicts []tags.Dictionary, opts options) {
	out := opts.output
	if out == "" {
		out = "records.json"
	}

	engine := newEngine(cfg)
	defer engine.Close()

	var batch *resolve.Batch
	_, err := util.SpinWhile("[~] Resolving capture times", func() (string, error) {
		var err error
		batch, err = engine.ResolveBatch(ctx, dicts)
		return "", err
	})
	if err != nil {
		fail("Resolution aborted: " + err.Error())
	}

	if logger := openLog(cfg); logger != nil {
		for _, f := range batch.Failures {
			logger.Error(fmt.Sprintf("[X] %v", f))
		}
		logger.Info(fmt.Sprintf("Resolved %d records into %s (%d failures)", len(batch.Records), out, len(batch.Failures)))
		logger.Close()
	}

	records := batch.Records
	var inferences []enrich.Inference
	if opts.infer {
		inferences = enrich.InferFromNeighbours(records)
		records = enrich.Apply(records, inferences)
	}
	sortRecords(records, opts.sortBy)

	saveRecords(ctx, out, records)

	fmt.Println(report.GenerateSummary(report.Summarize(batch, inferences)))
	fmt.Println(util.LBL.Render(fmt.Sprintf("[✓] Wrote %d records to %s", len(records), out)))
}

func sortRecords(records []media.Record, by string) {
	if by == "path" {
		resolve.SortByPath(records)
		return
	}
	resolve.SortByCaptureTime(records)
}

func saveRecords(ctx context.Context, path string, records []media.Record) {
	s, err := store.Open(path)
	if err != nil {
		fail("Could not open record store: " + err.Error())
	}
	defer s.Close()

	if err := s.Save(ctx, records); err != nil {
		fail("Could not save records: " + err.Error())
	}
}

func handleInferCommand(args []string) {
	const line = "tempora infer <records.json|.db> [-o inferred.json] [--sort time|path]"
	opts := mustParse(args, line)
	if len(opts.positional) != 1 {
		fmt.Println(util.LBL.Render("[X] Exactly one record file expected"))
		usage(line)
	}
	out := opts.output
	if out == "" {
		out = "inferred.json"
	}

	ctx, cancel := signalContext()
	defer cancel()

	in, err := store.Open(opts.positional[0])
	if err != nil {
		fail("Could not open records: " + err.Error())
	}
	records, err := in.Load(ctx)
	in.Close()
	if errors.Is(err, store.ErrNotFound) {
		fail("No records at " + opts.positional[0])
	}
	if err != nil {
		fail("Could not load records: " + err.Error())
	}

	inferences := enrich.InferFromNeighbours(records)
	for _, inf := range inferences {
		fmt.Printf(" %s %s → %s %s\n", util.Ornament,
			util.NSH.Render(filepath.Base(inf.Original.FilePath())),
			util.RenderTime(inf.Inferred.CaptureTimeString(), util.Inferred),
			util.SUB.Render(fmt.Sprintf("(from %s, %+d)", filepath.Base(inf.From), inf.Distance)))
	}

	records = enrich.Apply(records, inferences)
	sortRecords(records, opts.sortBy)
	saveRecords(ctx, out, records)

	fmt.Println(util.LBL.Render(fmt.Sprintf("[✓] Inferred %d capture times, wrote %d records to %s", len(inferences), len(records), out)))
}

func handleShowCommand(args []string) {
	const line = "tempora show <file> [--plain] [--native]"
	opts := mustParse(args, line)
	if len(opts.positional) != 1 {
		fmt.Println(util.LBL.Render("[X] No file specified"))
		usage(line)
	}

	path := opts.positional[0]
	if err := util.ValidatePath(path); err != nil {
		fail(err.Error())
	}

	dicts, errs := readTags([]string{path}, opts.native)
	if len(errs) > 0 {
		fail("Could not read tags: " + errs[0].Error())
	}
	if len(dicts) == 0 {
		fail("No tags returned for " + path)
	}

	engine := newEngine(loadConfig())
	defer engine.Close()

	r, err := report.Explain(engine, dicts[0])
	if err != nil {
		fail("Resolution failed: " + err.Error())
	}

	if opts.plain {
		fmt.Print(report.GenerateSimplifiedReport(r))
		return
	}
	if ft, err := scan.DetectFile(path); err == nil && ft.IsMedia() {
		fmt.Println(util.SUB.Render(fmt.Sprintf("%s (%s)", ft.Kind, ft.MimeType)))
	} else {
		fmt.Println(util.SEC.Render("[!] Not a recognised image or video format"))
	}
	fmt.Println(report.GenerateReport(r))
}

func handleConfigCommand(args []string) {
	const line = "tempora config init [path]"
	if len(args) < 1 || args[0] != "init" {
		usage(line)
	}

	path := ""
	if len(args) > 1 {
		path = args[1]
	} else {
		dir, err := config.SetupConfigDir()
		if err != nil {
			fail("Could not create config directory: " + err.Error())
		}
		path = filepath.Join(dir, "tempora.toml")
	}

	if _, err := os.Stat(path); err == nil {
		fail("Config already exists: " + path)
	}
	if err := config.Save(config.Default(), path); err != nil {
		fail("Could not write config: " + err.Error())
	}
	fmt.Println(util.LBL.Render("[✓] Wrote default configuration to " + path))
}
