package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"hapticrec/audio"
	"hapticrec/config"
	"hapticrec/doctor"
	"hapticrec/hotkey"
	"hapticrec/log"
	"hapticrec/picker"
)

var version = "dev"

type cliFlags struct {
	configPath string
	logPath    string
	device     string
	gui        bool
	noHotkey   bool
	noHaptics  bool
}

// cli holds what PersistentPreRunE resolved for the command being run.
type cli struct {
	flags cliFlags
	cfg   *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "hapticrec",
		Short:         "Two-channel recorder with a draggable transport wheel",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.flags.gui {
				return runGUI(c.cfg, c.flags)
			}
			return runTUI(c.cfg, c.flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default: "+config.DefaultPath()+")")
	pf.StringVar(&c.flags.logPath, "logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	pf.StringVar(&c.flags.device, "device", "", "use named capture device")

	f := root.Flags()
	f.BoolVar(&c.flags.gui, "gui", false, "open the desktop window (needs a -tags gui build)")
	f.BoolVar(&c.flags.noHotkey, "no-hotkey", false, "do not register the global Ctrl+Shift+Space hotkey")
	f.BoolVar(&c.flags.noHaptics, "no-haptics", false, "silence the transport clicks")

	root.AddCommand(
		newDevicesCmd(c),
		newDoctorCmd(c),
		newConfigCmd(c),
		newScriptCmd(c),
		newVersionCmd(),
	)
	return root
}

// setup resolves the log directory and loads config before any command runs.
func (c *cli) setup() error {
	logPath, err := log.ResolveDir(c.flags.logPath)
	if err != nil {
		return fmt.Errorf("failed to resolve log directory: %w", err)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return err
	}
	if c.flags.device != "" {
		cfg.Capture.Device = c.flags.device
	}
	if c.flags.noHaptics {
		cfg.Haptics.Enabled = false
	}
	if c.flags.noHotkey {
		cfg.Hotkey.Enabled = false
	}
	log.MaxSizeMB = cfg.Log.MaxSizeMB
	log.MaxBackups = cfg.Log.MaxBackups
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	c.cfg = cfg
	return nil
}

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}

func newDevicesCmd(c *cli) *cobra.Command {
	var selectFlag bool
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List capture devices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := audio.NewContext()
			if err != nil {
				return fmt.Errorf("initializing audio: %w", err)
			}
			defer ctx.Close()

			devices, err := ctx.Devices()
			if err != nil {
				return fmt.Errorf("listing devices: %w", err)
			}
			if len(devices) == 0 {
				return errors.New("no capture devices found")
			}

			out := cmd.OutOrStdout()
			if !selectFlag {
				for _, d := range devices {
					fmt.Fprintln(out, deviceLineText(&d))
				}
				return nil
			}

			labels := make([]string, len(devices))
			for i := range devices {
				labels[i] = deviceLineText(&devices[i])
			}
			i, err := picker.Choose(int(os.Stdin.Fd()), os.Stdin, os.Stderr, "Select capture device", labels)
			if errors.Is(err, picker.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", devices[i].Name)
			fmt.Fprintf(os.Stderr, "Use it with: hapticrec --device %q (or capture.device in %s)\n", devices[i].Name, config.DefaultPath())
			return nil
		},
	}
	cmd.Flags().BoolVar(&selectFlag, "select", false, "pick a device interactively and print its name")
	return cmd
}

func deviceLineText(dev *audio.DeviceInfo) string {
	if dev == nil {
		return "default device"
	}
	if audio.IsBluetooth(dev.Name) {
		return dev.Name + " (bluetooth: expect reduced quality)"
	}
	return dev.Name
}

func newDoctorCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run system diagnostics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := doctor.Options{
				Out:        cmd.OutOrStdout(),
				SampleRate: c.cfg.Capture.SampleRate,
				Channels:   c.cfg.Capture.Channels,
				Haptics:    c.cfg.Haptics.Enabled,
				Clipboard:  c.cfg.Export.Clipboard,
			}
			if ctx, err := audio.NewContext(); err == nil {
				defer ctx.Close()
				opts.Audio = ctx
				if dev, err := audio.FindDevice(ctx, c.cfg.Capture.Device); err == nil {
					opts.Device = dev
				}
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: audio unavailable: %v\n", err)
			}
			if c.cfg.Hotkey.Enabled {
				opts.Hotkey = hotkey.New()
			}
			if code := doctor.Run(opts); code != 0 {
				return errDoctorFailed
			}
			return nil
		},
	}
}

var errDoctorFailed = errors.New("diagnostics failed")

func newConfigCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := c.cfg.YAML()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if c.cfg.Path != "" {
				fmt.Fprintf(out, "# %s\n", c.cfg.Path)
			} else {
				fmt.Fprintln(out, "# defaults (no config file)")
			}
			_, err = out.Write(data)
			return err
		},
	})
	return cmd
}

func newScriptCmd(c *cli) *cobra.Command {
	var left, right float64
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Headless session driven by stdin commands",
		Long: `Runs a session against a synthetic tone with no terminal UI.
Commands, one per line: PLAY, RECORD, STOP, DRAG <dx>, DTAP, SLEEP <ms>,
WAIT_EXPORT, QUIT. Captures are exported to the first export dir.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScript(c.cfg, scriptOptions{
				In:    cmd.InOrStdin(),
				Out:   cmd.OutOrStdout(),
				Left:  left,
				Right: right,
			})
		},
	}
	cmd.Flags().Float64Var(&left, "left", 0.5, "peak amplitude of the synthetic left channel")
	cmd.Flags().Float64Var(&right, "right", 0.5, "peak amplitude of the synthetic right channel")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hapticrec %s\n", version)
		},
	}
}

// execute runs the CLI and returns the process exit code.
func execute() int {
	err := newRootCmd().Execute()
	log.Close()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errDoctorFailed):
		return 1
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

// wantsGUI peeks at the arguments before cobra parses them: the GUI must
// own the main thread from the start.
func wantsGUI(args []string) bool {
	for _, a := range args {
		if a == "--gui" {
			return true
		}
	}
	return false
}
