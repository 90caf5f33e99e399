// Command loki is the default host: it parses the CLI surface, loads
// the optional loki.yaml config, and wires a session.Session to one of
// three transports -- an interactive terminal, a JSON-RPC control
// harness over stdin/stdout, or a websocket web host.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/shakfu/loki/internal/asyncqueue"
	"github.com/shakfu/loki/internal/config"
	"github.com/shakfu/loki/internal/event"
	"github.com/shakfu/loki/internal/jsonrpc"
	"github.com/shakfu/loki/internal/render"
	"github.com/shakfu/loki/internal/session"
	"github.com/shakfu/loki/internal/terminalhost"
	"github.com/shakfu/loki/internal/webhost"
)

// Version is the engine's release tag, reported by -v/--version.
const Version = "0.1.0"

type options struct {
	Help          bool   `short:"h" long:"help" description:"Show this help"`
	Version       bool   `short:"v" long:"version" description:"Show version"`
	LineNumbers   bool   `long:"line-numbers" description:"Show the line-number gutter"`
	WordWrap      bool   `long:"word-wrap" description:"Enable word wrap"`
	JSONRPC       bool   `long:"json-rpc" description:"Run the JSON-RPC control harness over stdin/stdout"`
	JSONRPCSingle bool   `long:"json-rpc-single" description:"Handle exactly one JSON-RPC command then exit"`
	Rows          int    `long:"rows" description:"Headless screen rows" default:"24"`
	Cols          int    `long:"cols" description:"Headless screen cols" default:"80"`
	Web           bool   `long:"web" description:"Serve the editor over a websocket web host"`
	WebPort       int    `long:"web-port" description:"Web host port" default:"8080"`
	WebRoot       string `long:"web-root" description:"Static asset directory for the web host"`
	Config        string `long:"config" description:"Path to loki.yaml"`
	Positional    struct {
		Filename string `positional-arg-name:"filename"`
	} `positional-args:"yes"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts options
	parser := flags.NewParser(&opts, flags.PassDoubleDash)
	parser.Usage = "[options] [filename]"
	rest, err := parser.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(rest) > 0 && opts.Positional.Filename == "" {
		opts.Positional.Filename = rest[0]
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		return 0
	}
	if opts.Version {
		fmt.Println("loki " + Version)
		return 0
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loki: config: %v\n", err)
		return 1
	}

	switch {
	case opts.JSONRPC || opts.JSONRPCSingle:
		return runJSONRPC(opts, cfg)
	case opts.Web:
		return runWeb(opts, cfg)
	default:
		return runTerminal(opts, cfg)
	}
}

func newSession(opts options, cfg config.Config, rows, cols int) *session.Session {
	return session.New(session.Config{
		ScreenRows:  rows,
		ScreenCols:  cols,
		LineNumbers: opts.LineNumbers,
		WordWrap:    opts.WordWrap,
		OpenPath:    opts.Positional.Filename,
		IndentUnit:  cfg.IndentUnit,
	})
}

func rendererPalette(cfg config.Config) terminalhost.Palette {
	return terminalhost.Palette{
		Comment:   cfg.Palette.Comment,
		MLComment: cfg.Palette.MLComment,
		Keyword1:  cfg.Palette.Keyword1,
		Keyword2:  cfg.Palette.Keyword2,
		String:    cfg.Palette.String,
		Number:    cfg.Palette.Number,
		Match:     cfg.Palette.Match,
		NonPrint:  cfg.Palette.NonPrint,
	}
}

func runJSONRPC(opts options, cfg config.Config) int {
	sess := newSession(opts, cfg, opts.Rows, opts.Cols)
	h := jsonrpc.New(sess)
	if err := h.Run(os.Stdin, os.Stdout, opts.JSONRPCSingle); err != nil {
		fmt.Fprintf(os.Stderr, "loki: json-rpc: %v\n", err)
		return 1
	}
	return 0
}

func runWeb(opts options, cfg config.Config) int {
	sess := newSession(opts, cfg, opts.Rows, opts.Cols)
	srv := webhost.New(sess, opts.WebRoot)
	addr := fmt.Sprintf(":%d", opts.WebPort)
	fmt.Printf("loki: web host listening on %s\n", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		fmt.Fprintf(os.Stderr, "loki: web: %v\n", err)
		return 1
	}
	return 0
}

func runTerminal(opts options, cfg config.Config) int {
	host := terminalhost.New(int(os.Stdin.Fd()))
	if err := host.EnableRaw(); err != nil {
		fmt.Fprintf(os.Stderr, "loki: enabling raw mode: %v\n", err)
		return 1
	}
	defer host.DisableRaw()
	host.WatchResize()
	defer host.StopWatchingResize()

	rows, cols, err := host.WindowSize()
	if err != nil || rows <= 0 || cols <= 0 {
		rows, cols = opts.Rows, opts.Cols
	}
	// Reserve the status and message lines from the usable text area.
	textRows := rows - 2
	if textRows < 1 {
		textRows = 1
	}

	sess := newSession(opts, cfg, textRows, cols)

	renderer := terminalhost.NewRenderer()
	renderer.SetPalette(rendererPalette(cfg))
	defer renderer.Destroy()
	sess.SetClipboard(renderer)

	src := terminalhost.NewSource(host)
	sess.HandleEvent(event.Resize(textRows, cols))

	// Background producers deliver work as queued events; the main
	// thread drains them at the top of each iteration.
	queue := asyncqueue.Default()
	handlers := map[asyncqueue.EventType]asyncqueue.Handler{
		asyncqueue.UserDefined: func(ctx any, e asyncqueue.Event) {
			if ev, ok := e.Payload.(event.Event); ok {
				sess.HandleEvent(ev)
			}
		},
	}

	for !sess.ShouldQuit() {
		queue.DispatchAll(sess, handlers)
		drawFrame(renderer, sess)

		ev, err := src.Read(100)
		if err != nil {
			if err == event.ErrTimeout {
				continue
			}
			break
		}
		if ev.Kind == event.KindResize {
			textRows = ev.Rows - 2
			if textRows < 1 {
				textRows = 1
			}
			sess.Resize(textRows, ev.Cols)
			continue
		}
		sess.HandleEvent(ev)
	}
	return 0
}

func drawFrame(r render.Renderer, sess *session.Session) {
	vm := sess.Snapshot()
	r.BeginFrame(vm.ScreenCols, vm.ScreenRows)
	r.RenderTabs(vm.Tabs)
	for _, rv := range vm.Rows {
		r.RenderRow(rv.FileRow, rv.Segments, vm.GutterWidth, rv.Empty)
	}
	r.RenderStatus(vm.Status)
	r.RenderMessage(vm.Message, vm.MessageVisible)
	r.RenderREPL(vm.REPL)
	if vm.Cursor.Visible {
		r.SetCursor(vm.Cursor.ScreenRow, vm.Cursor.ScreenCol)
	}
	r.EndFrame()
}
