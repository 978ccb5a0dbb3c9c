package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	wasmdom "github.com/wippyai/wasm-dom"
	"github.com/wippyai/wasm-dom/config"
	"github.com/wippyai/wasm-dom/dom"
	"github.com/wippyai/wasm-dom/event"
	"github.com/wippyai/wasm-dom/host"
	"github.com/wippyai/wasm-dom/listener"
	"github.com/wippyai/wasm-dom/runtime"
	"github.com/wippyai/wasm-dom/script"
)

var kinds = map[string]event.Kind{
	"generic":    event.KindGeneric,
	"wheel":      event.KindWheel,
	"mouse":      event.KindMouse,
	"keyboard":   event.KindKeyboard,
	"scroll":     event.KindScroll,
	"visibility": event.KindVisibility,
}

type options struct {
	configFile  string
	wasmFile    string
	document    string
	logLevel    string
	layout      string
	scriptFile  string
	decode      string
	call        string
	width       int
	interactive bool
}

func main() {
	var o options
	flag.StringVar(&o.configFile, "config", "", "Config file (yaml, toml or json)")
	flag.StringVar(&o.wasmFile, "wasm", "", "Path to guest wasm file (overrides guest.path)")
	flag.StringVar(&o.document, "document", "", "Document fixture file (overrides document_file)")
	flag.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&o.layout, "layout", "", "Print the record layout of a kind (mouse, keyboard, ...) and exit")
	flag.StringVar(&o.scriptFile, "script", "", "Replay a YAML event script")
	flag.StringVar(&o.decode, "decode", "", "After running, decode a record as kind@addr (e.g. mouse@1024)")
	flag.StringVar(&o.call, "call", "", "Call a guest export taking no params")
	flag.IntVar(&o.width, "width", 0, "Native integer width, 4 or 8 (overrides width)")
	flag.BoolVar(&o.interactive, "i", false, "Interactive mode with TUI")
	flag.Parse()

	if err := run(o); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(o options) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.wasmFile != "" {
		cfg.Guest.Path = o.wasmFile
	}
	if o.document != "" {
		cfg.DocumentFile = o.document
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.width != 0 {
		cfg.Width = o.width
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if o.layout != "" {
		return printLayout(o.layout, cfg.NativeWidth())
	}

	if cfg.Guest.Path == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -wasm <file.wasm> [-config file] [-document file] [-width 4|8]")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -script events.yaml [-decode mouse@1024]")
		fmt.Fprintln(os.Stderr, "       run -wasm <file.wasm> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       run -layout keyboard [-width 8]")
		os.Exit(1)
	}

	if o.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(cfg)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()
	setLoggers(logger)

	return runBatch(cfg, o, logger)
}

func runBatch(cfg *config.Config, o options, logger *zap.Logger) error {
	ctx := context.Background()

	doc, err := cfg.LoadDocument()
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	rt, err := runtime.New(ctx, cfg, logger, doc, runtime.WithSink(func(s host.Stream, line string) {
		fmt.Printf("[%s] %s\n", s, line)
	}))
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	fmt.Printf("Guest: %s (width %d)\n", cfg.Guest.Path, cfg.Width)
	if err := rt.LoadFile(ctx, cfg.Guest.Path); err != nil {
		return fmt.Errorf("load guest: %w", err)
	}
	fmt.Printf("Listeners: %d\n", rt.Bridge().Registry().Len())

	if o.call != "" {
		res, err := rt.Call(ctx, o.call)
		if err != nil {
			return fmt.Errorf("call %s: %w", o.call, err)
		}
		fmt.Printf("%s() = %v\n", o.call, res)
	}

	if o.scriptFile != "" {
		s, err := script.Load(o.scriptFile)
		if err != nil {
			return err
		}
		results, err := script.Replay(ctx, rt, s)
		for _, r := range results {
			printResult(r)
		}
		if err != nil {
			return fmt.Errorf("replay %s: %w", o.scriptFile, err)
		}
	}

	if o.decode != "" {
		return decodeRecord(rt, o.decode)
	}
	return nil
}

func printResult(r script.Result) {
	if r.Type == "" {
		fmt.Printf("  #%d frames=%d\n", r.Index, r.Frames)
		return
	}
	fmt.Printf("  #%d %s -> %s not_canceled=%t", r.Index, r.Type, r.Target, r.NotCanceled)
	if r.Frames > 0 {
		fmt.Printf(" frames=%d", r.Frames)
	}
	fmt.Println()
}

func parseKind(name string) (event.Kind, error) {
	k, ok := kinds[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown event kind %q", name)
	}
	return k, nil
}

func printLayout(name string, width wasmdom.Width) error {
	kind, err := parseKind(name)
	if err != nil {
		return err
	}
	fmt.Printf("%s record, width %d, %d bytes\n", kind, width, event.Size(kind, width))
	for _, f := range event.Layout(kind, width) {
		fmt.Printf("  %4d  %-16s %3d\n", f.Offset, f.Name, f.Size)
	}
	return nil
}

func decodeRecord(rt *runtime.Runtime, arg string) error {
	name, addrStr, ok := strings.Cut(arg, "@")
	if !ok {
		return fmt.Errorf("decode wants kind@addr, got %q", arg)
	}
	kind, err := parseKind(name)
	if err != nil {
		return err
	}
	addr, err := strconv.ParseUint(addrStr, 0, 32)
	if err != nil {
		return fmt.Errorf("decode address: %w", err)
	}
	rec, err := event.Decode(rt.Bridge().View(), uint32(addr), kind)
	if err != nil {
		return err
	}
	fmt.Printf("%s record at %d:\n", kind, addr)
	fmt.Printf("  name_code=%d target=%s current=%s phase=%d options=%d trusted=%t composing=%t\n",
		rec.NameCode, rec.Target, rec.CurrentTarget, rec.Phase, rec.Options, rec.IsTrusted, rec.IsComposing)
	fmt.Printf("  id=(%d, %d) timestamp=%.3fs\n", rec.IDPtr, rec.IDLen, rec.TimeStamp)
	switch {
	case rec.Mouse != nil:
		fmt.Printf("  mouse %+v\n", *rec.Mouse)
	case rec.Wheel != nil:
		fmt.Printf("  wheel %+v\n", *rec.Wheel)
	case rec.Keyboard != nil:
		fmt.Printf("  keyboard %+v\n", *rec.Keyboard)
	case kind == event.KindScroll:
		fmt.Printf("  scroll=(%v, %v)\n", rec.ScrollX, rec.ScrollY)
	case kind == event.KindVisibility:
		fmt.Printf("  visible=%t\n", rec.Visible)
	}
	return nil
}

func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return l, err
	}
	return l, nil
}

func newLogger(level string) (*zap.Logger, error) {
	l, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	if l == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(l)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// setLoggers points the library package loggers at l.
func setLoggers(l *zap.Logger) {
	dom.SetLogger(l)
	host.SetLogger(l)
	listener.SetLogger(l)
	script.SetLogger(l)
}
