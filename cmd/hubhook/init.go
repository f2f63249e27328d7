package main

import (
	"fmt"
	"os"
	"path/filepath"

	"hubhook/internal/channel"
	"hubhook/internal/config"
	"hubhook/internal/eventlog"
	"hubhook/internal/security"
	"hubhook/pkg/fileutil"
	"hubhook/pkg/templates"

	"github.com/spf13/cobra"
)

var (
	initOutput    string
	initStore     string
	initForce     bool
	initSystemd   bool
	initUser      string
	initWorkDir   string
	initAppSecret string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Write a hubhook.yaml with a freshly generated verify token. The app secret
comes from the app dashboard; pass it with --app-secret or fill it in later.

With --systemd the matching systemd unit is printed to stdout.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	f := initCmd.Flags()
	f.StringVarP(&initOutput, "output", "o", config.ConfigFileName, "Where to write the config file")
	f.StringVar(&initStore, "store", eventlog.DriverFile, "Event store driver for the config")
	f.BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	f.BoolVar(&initSystemd, "systemd", false, "Also print a systemd unit")
	f.StringVar(&initUser, "user", "hubhook", "Service user for the systemd unit")
	f.StringVar(&initWorkDir, "workdir", "/var/lib/hubhook", "Working directory for the systemd unit")
	f.StringVar(&initAppSecret, "app-secret", "", "App secret to write into the config")
}

func runInit(cmd *cobra.Command, args []string) error {
	if !eventlog.ValidDriver(initStore) {
		return fmt.Errorf("unknown store driver '%s'", initStore)
	}
	if fileutil.FileExists(initOutput) && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", initOutput)
	}

	token, err := security.GenerateToken(24)
	if err != nil {
		return err
	}

	rendered, err := templates.RenderConfig(templates.ConfigData{
		Host:        config.DefaultHost,
		Port:        config.DefaultPort,
		AppSecret:   initAppSecret,
		VerifyToken: token,
		Channels:    channel.Names(channel.All()),
		StoreDriver: initStore,
		StorePath:   eventlog.DefaultPath(initStore),
	})
	if err != nil {
		return err
	}

	if err := fileutil.WriteFileAtomic(initOutput, []byte(rendered), security.PermConfigFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s\n", initOutput)
	fmt.Fprintf(out, "Verify token: %s\n", token)
	if initAppSecret == "" {
		fmt.Fprintln(out, "Set app_secret before starting the gateway.")
	}

	if !initSystemd {
		return nil
	}

	absConfig, err := filepath.Abs(initOutput)
	if err != nil {
		return err
	}
	binary, err := os.Executable()
	if err != nil {
		binary = "/usr/local/bin/hubhook"
	}

	unit, err := templates.RenderSystemdService(templates.ServiceData{
		User:       initUser,
		Group:      initUser,
		WorkingDir: initWorkDir,
		Binary:     binary,
		ConfigFile: absConfig,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, unit)
	return nil
}
