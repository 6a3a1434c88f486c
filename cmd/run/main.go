package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/wippyai/tsload/engine"
	"github.com/wippyai/tsload/harness"
	"github.com/wippyai/tsload/host"
	"github.com/wippyai/tsload/linker"
	"github.com/wippyai/tsload/runtime"
	"github.com/wippyai/tsload/translator"
)

type config struct {
	entry      string
	exportName string
	funcName   string
	strArg     string
	manifest   string
	root       string
	ext        string
	target     string
	wasm       string
	logLevel   string
	sourceMaps bool
	list       bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.entry, "entry", "", "Entry module to load")
	flag.StringVar(&cfg.exportName, "export", "", "Print one export as JSON")
	flag.StringVar(&cfg.funcName, "call", "", "Exported function to call")
	flag.StringVar(&cfg.strArg, "arg", "", "String argument to pass to -call")
	flag.StringVar(&cfg.manifest, "manifest", "", "Check manifest (.hcl, .toml, .yaml)")
	flag.StringVar(&cfg.root, "root", "", "Directory entry paths resolve against (default: cwd)")
	flag.StringVar(&cfg.ext, "ext", "", "Source extension (default: .ts)")
	flag.StringVar(&cfg.target, "target", "", "Translation target, e.g. es2020")
	flag.StringVar(&cfg.wasm, "translator", "", "WebAssembly translator module to use instead of esbuild")
	flag.StringVar(&cfg.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.BoolVar(&cfg.sourceMaps, "source-maps", false, "Inline source maps in translated output")
	flag.BoolVar(&cfg.list, "list", false, "List exports and exit")
	interactive := flag.Bool("i", false, "Interactive mode with TUI")
	flag.Parse()

	if cfg.entry == "" && cfg.manifest == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -entry <file.ts> [-list] [-export NAME] [-call FN -arg S]")
		fmt.Fprintln(os.Stderr, "       run -manifest <checks.hcl|.toml|.yaml>")
		fmt.Fprintln(os.Stderr, "       run -entry <file.ts> -i  (interactive mode)")
		os.Exit(1)
	}

	log, err := newLogger(cfg.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	setLoggers(log)

	switch {
	case cfg.manifest != "":
		err = runManifest(cfg)
	case *interactive:
		err = runInteractive(cfg)
	default:
		err = run(cfg)
	}
	if err != nil {
		exit(log, err)
	}
}

var osExit = os.Exit

// exit reports err, flushes log and terminates. Deferred calls do not run.
func exit(log *zap.Logger, err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	_ = log.Sync()
	osExit(1)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = lvl
	zc.DisableStacktrace = true
	return zc.Build()
}

func setLoggers(log *zap.Logger) {
	linker.SetLogger(log.Named("linker"))
	engine.SetLogger(log.Named("engine"))
	runtime.SetLogger(log.Named("runtime"))
	host.SetLogger(log.Named("host"))
	harness.SetLogger(log.Named("harness"))
}

func newTranslator(ctx context.Context, cfg config) (translator.Translator, error) {
	if cfg.wasm != "" {
		bin, err := os.ReadFile(cfg.wasm)
		if err != nil {
			return nil, fmt.Errorf("read translator: %w", err)
		}
		return translator.NewWasm(ctx, bin)
	}
	return translator.NewESBuildWithConfig(&translator.ESBuildConfig{
		Target:     cfg.target,
		SourceMaps: cfg.sourceMaps,
	})
}

func newRuntime(ctx context.Context, cfg config) (*runtime.Runtime, error) {
	tr, err := newTranslator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts := []runtime.Option{runtime.WithTranslator(tr)}
	if cfg.root != "" {
		opts = append(opts, runtime.WithRoot(cfg.root))
	}
	if cfg.ext != "" {
		opts = append(opts, runtime.WithExtension(cfg.ext))
	}
	return runtime.New(opts...)
}

func run(cfg config) error {
	ctx := context.Background()

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	exports, err := rt.Load(cfg.entry)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.entry, err)
	}

	fmt.Printf("Entry: %s\n", cfg.entry)
	fmt.Printf("Modules loaded: %d\n", rt.Len())

	if cfg.exportName == "" && cfg.funcName == "" {
		fmt.Printf("\nExports:\n")
		for _, name := range engine.ExportNames(exports) {
			fmt.Printf("  %s: %s\n", name, engine.TypeOf(exports.Get(name)))
		}
	}
	if cfg.list {
		for _, rec := range rt.Records() {
			fmt.Printf("  [%s] %s\n", rec.State, rec.Path)
		}
		return nil
	}

	if cfg.exportName != "" {
		v, ok := engine.Get(rt.VM(), exports, cfg.exportName)
		if !ok {
			return fmt.Errorf("export %q not found", cfg.exportName)
		}
		fmt.Printf("\n%s = %s\n", cfg.exportName, engine.Stringify(rt.VM(), v))
	}

	if cfg.funcName != "" {
		fn, ok := goja.AssertFunction(exports.Get(cfg.funcName))
		if !ok {
			return fmt.Errorf("export %q is not a function", cfg.funcName)
		}
		fmt.Printf("\nCalling %s(%q)...\n", cfg.funcName, cfg.strArg)
		result, err := fn(goja.Undefined(), rt.VM().ToValue(cfg.strArg))
		if err != nil {
			return fmt.Errorf("call %s: %w", cfg.funcName, err)
		}
		fmt.Printf("Result: %s\n", engine.Stringify(rt.VM(), result))
	}

	return nil
}

func runManifest(cfg config) error {
	m, err := harness.LoadManifest(cfg.manifest)
	if err != nil {
		return err
	}
	// flags override the manifest's engine block
	if cfg.root != "" {
		root, err := filepath.Abs(cfg.root)
		if err != nil {
			return err
		}
		m.Engine.Root = root
	}
	if cfg.ext != "" {
		m.Engine.Extension = cfg.ext
	}
	if cfg.target != "" {
		m.Engine.Target = cfg.target
	}
	if cfg.sourceMaps {
		m.Engine.SourceMaps = true
	}

	var extra []runtime.Option
	if cfg.wasm != "" {
		ctx := context.Background()
		tr, err := newTranslator(ctx, cfg)
		if err != nil {
			return err
		}
		defer tr.(*translator.Wasm).Close(ctx)
		extra = append(extra, runtime.WithTranslator(tr))
	}

	report, err := harness.Run(m, extra...)
	if err != nil {
		return err
	}
	fmt.Print(renderReport(report, isTerminal(os.Stdout)))
	if !report.Passed() {
		return fmt.Errorf("%d of %d checks failed", report.Failed(), len(report.Results))
	}
	return nil
}
