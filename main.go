// Program wsjtx2eqsl listens for the "logged ADIF" UDP broadcast that WSJT-X
// emits after each QSO, uploads the record to eQSL.cc, and shows a live
// terminal dashboard with connection, upload and contact-history state.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"wsjtx2eqsl/config"
	"wsjtx2eqsl/eqsl"
	"wsjtx2eqsl/qso"
)

// Version of the uploader.
const Version = "1.0.0"

// trailFileName is the activity trail in the working directory.
const trailFileName = "wsjtx2eqsl.log"

// app wires the three concurrent units of work (listener, input handler and
// dashboard) around the shared session store. Coordination is shared memory
// only: the store's synchronized fields, the pause flag, the running flag,
// and termMu for exclusive modal terminal ownership.
type app struct {
	cfg     *config.Config
	confDir string
	store   *qso.Store
	trail   *trail
	upl     *uploader
	kb      *keyboard
	dash    *dashboard
	sink    io.Writer

	termMu   sync.Mutex
	running  atomic.Bool
	exitOnce sync.Once
}

func main() {
	printBanner()

	cfg := config.Load("")
	if cfg.HasCredentials() {
		fmt.Printf("\x1b[32m✓ Loaded saved credentials for: %s\x1b[0m\n", cfg.Username)
		fmt.Print("\x1b[36m(Press 'c' during operation to change configuration)\x1b[0m\n\n")
	} else {
		if err := runSetup(cfg, ""); err != nil {
			fmt.Fprintf(os.Stderr, "\x1b[31mError: %v\x1b[0m\n", err)
			os.Exit(1)
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "wsjtx2eqsl requires an interactive terminal")
		os.Exit(1)
	}

	tr := newTrail(trailFileName)
	tr.Logf("=== wsjtx2eqsl v%s started ===", Version)
	// Stray stdlib log output must never reach the dashboard's screen.
	log.SetFlags(0)
	log.SetOutput(tr)

	store := qso.NewStore()
	store.SetAutoUpload(cfg.AutoUpload)
	store.SetDebug(cfg.Debug)
	store.SetColor(cfg.Color)

	a := &app{
		cfg:   cfg,
		store: store,
		trail: tr,
		kb:    newKeyboard(os.Stdin),
		sink:  os.Stdout,
	}
	a.dash = newDashboard(store, cfg.Username, a.sink, &a.termMu)
	a.upl = &uploader{
		client:      eqsl.NewClient(""),
		store:       store,
		trail:       tr,
		username:    cfg.Username,
		password:    cfg.Password,
		promptRetry: a.promptRetry,
	}

	conn, err := bindListener(cfg.UDPPort)
	if err != nil {
		tr.Logf("Fatal: %v", err)
		fmt.Fprintf(os.Stderr, "\x1b[31mError: %v\x1b[0m\n", err)
		os.Exit(1)
	}
	store.SetConnStatus(fmt.Sprintf("Listening, UDP port %d", cfg.UDPPort))

	fmt.Print("\x1b[32m✓ Starting...\x1b[0m\n")

	if err := a.kb.makeRaw(); err != nil {
		tr.Logf("Fatal: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	a.running.Store(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		a.shutdown()
	}()

	go a.listenLoop(conn)
	go a.inputLoop()

	// The dashboard runs on the main goroutine for the life of the process.
	a.dash.run(&a.running)
	a.shutdown()
}

func printBanner() {
	fmt.Print("\x1b[2J\x1b[1;1H")
	fmt.Print("\x1b[36m+------------------------------------------------+\x1b[0m\n")
	fmt.Printf("\x1b[36m| wsjtx2eqsl v%-35s|\x1b[0m\n", Version)
	fmt.Print("\x1b[36m| WSJT-X to eQSL.cc Auto-Uploader                |\x1b[0m\n")
	fmt.Print("\x1b[36m+------------------------------------------------+\x1b[0m\n\n")
}

// Purpose: Cooperative process exit with a final summary.
// Key aspects: Single-shot; restores the terminal before any summary output
// and flushes the trail. Shared by the quit key, SIGINT/SIGTERM and the
// dashboard loop ending.
// Upstream: inputLoop 'q', signal handler, end of main.
// Downstream: keyboard.restore, trail.Close, os.Exit.
func (a *app) shutdown() {
	a.exitOnce.Do(func() {
		a.running.Store(false)
		a.kb.restore()
		fmt.Fprint(a.sink, "\x1b[2J\x1b[?25h\x1b[1;1H")
		a.printf("\n[yellow]Shutting down...[-]\n")
		a.printf("[green]Total QSOs logged: %s[-]\n", humanize.Comma(int64(a.store.Count())))
		a.printf("[cyan]Activity trail: %s[-]\n\n", a.trail.Path())
		a.printf("73!\n\n")
		a.trail.Logf("=== wsjtx2eqsl stopped (%d QSOs this session) ===", a.store.Count())
		_ = a.trail.Close()
		os.Exit(0)
	})
}

// restartForConfig exits after a configuration change that only takes effect
// at startup (credentials or the bound port).
func (a *app) restartForConfig() {
	a.exitOnce.Do(func() {
		a.running.Store(false)
		a.kb.restore()
		fmt.Fprint(a.sink, "\x1b[2J\x1b[?25h\x1b[1;1H")
		a.printf("\n[yellow]Configuration changed. Please restart wsjtx2eqsl to apply it.[-]\n\n")
		a.trail.Logf("=== wsjtx2eqsl stopped for configuration restart ===")
		_ = a.trail.Close()
		os.Exit(0)
	})
}
