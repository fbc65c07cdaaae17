package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"wsjtx2eqsl/config"
)

// printf writes markup-processed text to the terminal sink. Used only in
// cooked-mode interludes (setup, menu, shutdown) where the dashboard is not
// painting.
func (a *app) printf(format string, args ...any) {
	fmt.Fprint(a.sink, applyMarkup(fmt.Sprintf(format, args...), a.store.Color()))
}

// runSetup interactively collects credentials on first run, before the
// dashboard takes over the terminal. The terminal is still in cooked mode.
func runSetup(cfg *config.Config, confDir string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("\x1b[33mConfiguration Setup\x1b[0m\n\n")

	fmt.Print("Enter your eQSL.cc username (callsign): ")
	username, _ := reader.ReadString('\n')
	cfg.Username = strings.ToUpper(strings.TrimSpace(username))
	if cfg.Username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	fmt.Print("Enter your eQSL.cc password (will not echo): ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	cfg.Password = string(secret)
	if cfg.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	fmt.Print("\nEnable auto-upload to eQSL.cc? (y/n): ")
	cfg.AutoUpload = readYes(reader)

	fmt.Printf("UDP port for WSJT-X logged ADIF (default %d): ", config.DefaultPort)
	if port, ok := readInt(reader); ok && port > 0 && port <= 65535 {
		cfg.UDPPort = port
	}

	fmt.Print("\nSave configuration for next time? (y/n): ")
	if readYes(reader) {
		if err := cfg.Save(confDir); err != nil {
			fmt.Printf("\x1b[33mWarning: could not save configuration: %v\x1b[0m\n", err)
		}
	} else {
		fmt.Print("\x1b[33mConfiguration will not be saved\x1b[0m\n")
	}
	fmt.Println()
	return nil
}

// Purpose: Modal configuration menu entered on the 'c' key.
// Key aspects: Runs on the input-handler goroutine; takes terminal ownership
// via TryLock (a pending retry overlay wins), sets the pause flag, drops to
// cooked mode for line input and restores raw mode on every exit. Credential
// and port changes save then request a restart; flag toggles apply live.
// Upstream: inputLoop on 'c'.
// Downstream: config.Save/Delete, store flag setters, restartForConfig.
func (a *app) configMenu() {
	if !a.termMu.TryLock() {
		return
	}
	defer a.termMu.Unlock()
	a.store.SetPaused(true)
	defer a.store.SetPaused(false)

	a.kb.restore()
	defer func() { _ = a.kb.reRaw() }()

	if a.runMenu() {
		a.restartForConfig()
	}
}

// runMenu drives the menu loop; returns true when a restart is required.
func (a *app) runMenu() bool {
	reader := bufio.NewReader(os.Stdin)

	for {
		a.printf("\x1b[?25h\x1b[2J\x1b[1;1H")
		a.printf("[cyan]+--------------------------------------------+[-]\n")
		a.printf("[cyan]|                Configuration               |[-]\n")
		a.printf("[cyan]+--------------------------------------------+[-]\n\n")
		a.printf("1. View current settings\n")
		a.printf("2. Change credentials\n")
		a.printf("3. Toggle auto-upload (currently %s)\n", onOff(a.store.AutoUpload()))
		a.printf("4. Toggle debug logging (currently %s)\n", onOff(a.store.Debug()))
		a.printf("5. Toggle color display (currently %s)\n", onOff(a.store.Color()))
		a.printf("6. Change UDP port\n")
		a.printf("7. Delete saved configuration\n")
		a.printf("8. Return to monitoring\n\n")
		a.printf("Select option (1-8): ")

		choice, _ := reader.ReadString('\n')
		switch strings.TrimSpace(choice) {
		case "1":
			a.printf("\n[green]Username:    %s[-]\n", a.cfg.Username)
			a.printf("[green]Auto-upload: %s[-]\n", onOff(a.store.AutoUpload()))
			a.printf("[green]UDP port:    %d[-]\n", a.cfg.UDPPort)
			a.printf("[green]Debug:       %s[-]\n", onOff(a.store.Debug()))
			a.printf("[green]Color:       %s[-]\n", onOff(a.store.Color()))
			pause(reader)
		case "2":
			if a.menuChangeCredentials(reader) {
				return true
			}
		case "3":
			a.store.SetAutoUpload(!a.store.AutoUpload())
			a.cfg.AutoUpload = a.store.AutoUpload()
			a.saveConfig()
			a.printf("\n[green]Auto-upload %s[-]\n", onOff(a.cfg.AutoUpload))
			pause(reader)
		case "4":
			a.store.SetDebug(!a.store.Debug())
			a.cfg.Debug = a.store.Debug()
			a.saveConfig()
			a.printf("\n[green]Debug logging %s[-]\n", onOff(a.cfg.Debug))
			pause(reader)
		case "5":
			a.store.SetColor(!a.store.Color())
			a.cfg.Color = a.store.Color()
			a.saveConfig()
			a.printf("\nColor display %s\n", onOff(a.cfg.Color))
			pause(reader)
		case "6":
			a.printf("\n[yellow]Current UDP port: %d[-]\n", a.cfg.UDPPort)
			a.printf("Enter new UDP port: ")
			if port, ok := readInt(reader); ok && port > 0 && port <= 65535 {
				a.cfg.UDPPort = port
				a.saveConfig()
				a.printf("\n[green]UDP port changed to %d.[-]\n", port)
				pause(reader)
				return true
			}
			a.printf("\n[red]Invalid port number[-]\n")
			pause(reader)
		case "7":
			a.printf("\n[red]Delete saved configuration? (y/n): [-]")
			if readYes(reader) {
				if err := config.Delete(a.confDir); err != nil {
					a.printf("[yellow]Could not delete configuration: %v[-]\n", err)
				} else {
					a.printf("[green]Configuration deleted.[-]\n")
					pause(reader)
					return true
				}
				pause(reader)
			}
		case "8", "":
			return false
		}
	}
}

// menuChangeCredentials prompts for new credentials; returns true when a
// restart is required (credentials changed and saved).
func (a *app) menuChangeCredentials(reader *bufio.Reader) bool {
	a.printf("\n[yellow]Enter new credentials:[-]\n\n")
	a.printf("Enter your eQSL.cc username (callsign): ")
	username, _ := reader.ReadString('\n')
	username = strings.ToUpper(strings.TrimSpace(username))
	if username == "" {
		a.printf("[yellow]Unchanged[-]\n")
		pause(reader)
		return false
	}

	a.printf("Enter your eQSL.cc password (will not echo): ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	a.printf("\n")
	if err != nil || len(secret) == 0 {
		a.printf("[yellow]Unchanged[-]\n")
		pause(reader)
		return false
	}

	a.cfg.Username = username
	a.cfg.Password = string(secret)
	a.saveConfig()
	a.printf("\n[green]Credentials updated.[-]\n")
	pause(reader)
	return true
}

func (a *app) saveConfig() {
	if err := a.cfg.Save(a.confDir); err != nil {
		a.trail.Logf("Could not save configuration - %v", err)
	}
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}

func pause(reader *bufio.Reader) {
	fmt.Print("\nPress Enter to continue...")
	_, _ = reader.ReadString('\n')
}

func readYes(reader *bufio.Reader) bool {
	line, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func readInt(reader *bufio.Reader) (int, bool) {
	line, _ := reader.ReadString('\n')
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, false
	}
	return n, true
}
