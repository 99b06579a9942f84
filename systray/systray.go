package systray

import (
	_ "embed"
	"log/slog"
	"os/exec"
	"runtime"
	"sync"

	"github.com/getlantern/systray"
)

//go:embed icon.png
var iconPNG []byte

//go:embed icon.ico
var iconICO []byte

// Canceller is the generation state the tray acts on
type Canceller interface {
	Generating() bool
	RequestCancel()
}

// SystrayManager manages the system tray icon and menu
type SystrayManager struct {
	dashboardURL string // empty when the dashboard is disabled
	canceller    Canceller
	quit         chan struct{}
	quitOnce     sync.Once

	mu      sync.Mutex
	mCancel *systray.MenuItem
}

// NewSystrayManager creates a new systray manager
func NewSystrayManager(dashboardURL string, canceller Canceller) *SystrayManager {
	return &SystrayManager{
		dashboardURL: dashboardURL,
		canceller:    canceller,
		quit:         make(chan struct{}),
	}
}

// Icon returns the tray icon in the format the platform expects
func Icon(goos string) []byte {
	if goos == "windows" {
		return iconICO
	}
	return iconPNG
}

// Run starts the system tray (blocking call)
func (m *SystrayManager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop stops the system tray
func (m *SystrayManager) Stop() {
	systray.Quit()
}

// WaitForQuit returns a channel that will be closed when user clicks Quit
func (m *SystrayManager) WaitForQuit() <-chan struct{} {
	return m.quit
}

// SetGenerating updates the tooltip and the cancel item
func (m *SystrayManager) SetGenerating(generating bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mCancel == nil {
		return
	}

	if generating {
		systray.SetTooltip("alpa - generating")
		m.mCancel.Enable()
	} else {
		systray.SetTooltip("alpa - idle")
		m.mCancel.Disable()
	}
}

// onReady is called when the systray is ready
func (m *SystrayManager) onReady() {
	systray.SetIcon(Icon(runtime.GOOS))
	systray.SetTitle("alpa")
	systray.SetTooltip("alpa - idle")

	var openCh <-chan struct{}
	if m.dashboardURL != "" {
		mOpen := systray.AddMenuItem("Open Dashboard", "Open the alpa web dashboard")
		openCh = mOpen.ClickedCh
	}

	mCancel := systray.AddMenuItem("Cancel Generation", "Stop typing the current generation")
	mCancel.Disable()
	m.mu.Lock()
	m.mCancel = mCancel
	m.mu.Unlock()

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit alpa")

	// Handle menu clicks
	go func() {
		for {
			select {
			case <-openCh:
				m.openDashboard()
			case <-mCancel.ClickedCh:
				if m.canceller.Generating() {
					slog.Info("Cancel requested from system tray")
					m.canceller.RequestCancel()
				}
			case <-mQuit.ClickedCh:
				slog.Info("User requested quit from system tray")
				m.quitOnce.Do(func() { close(m.quit) })
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the systray is exiting
func (m *SystrayManager) onExit() {
	slog.Info("System tray exited")
}

// openDashboard opens the dashboard in the default browser
func (m *SystrayManager) openDashboard() {
	slog.Info("Opening dashboard", "url", m.dashboardURL)

	cmd := browserCommand(runtime.GOOS, m.dashboardURL)
	if cmd == nil {
		slog.Error("Unsupported platform for opening browser", "platform", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		slog.Error("Failed to open dashboard", "error", err)
	}
}

// browserCommand returns the command that opens url, or nil
func browserCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "windows":
		return exec.Command("cmd", "/c", "start", url)
	case "darwin":
		return exec.Command("open", url)
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url)
	default:
		return nil
	}
}
