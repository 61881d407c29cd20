package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/prasmono/adb-to-local-copier/internal/adb"
	"github.com/prasmono/adb-to-local-copier/internal/db"
	"github.com/prasmono/adb-to-local-copier/internal/logging"
	"github.com/prasmono/adb-to-local-copier/internal/sync"
	"github.com/prasmono/adb-to-local-copier/pkg/models"
	"github.com/prasmono/adb-to-local-copier/pkg/version"
)

// pullFlags are shared between the pull subcommand and the bare
// "dsync LOCAL [REMOTE]" form.
var pullFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:  "newer",
		Usage: "overwrite local files when the device copy is newer",
	},
	&cli.BoolFlag{
		Name:  "no-skip-log",
		Usage: "do not write the skipped-path list",
	},
	&cli.StringFlag{
		Name:  "skip-log-dir",
		Usage: "directory for skipped-path lists (default: the local destination)",
	},
	&cli.StringSliceFlag{
		Name:  "root",
		Usage: "sync only this remote root (repeatable, disables discovery)",
	},
}

func main() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "print the version",
	}

	app := &cli.App{
		Name:                 "dsync",
		Usage:                "Synchronize files from an Android device to a local directory",
		ArgsUsage:            "LOCAL [REMOTE]",
		Version:              version.Version,
		EnableBashCompletion: true,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "device",
				Aliases: []string{"s"},
				Usage:   "device serial passed to the bridge tool",
				EnvVars: []string{"DSYNC_DEVICE"},
			},
			&cli.StringFlag{
				Name:    "adb",
				Value:   "adb",
				Usage:   "path to the bridge executable",
				EnvVars: []string{"DSYNC_ADB"},
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "suppress progress and info output",
			},
		}, pullFlags...),
		Action:         runPull,
		DefaultCommand: "pull",
		Commands: []*cli.Command{
			{
				Name:      "pull",
				Usage:     "Copy files from the device to a local directory",
				ArgsUsage: "LOCAL [REMOTE]",
				Flags:     pullFlags,
				Action:    runPull,
			},
			{
				Name:      "push",
				Usage:     "Copy files from a local directory to the device (not supported)",
				ArgsUsage: "LOCAL REMOTE",
				Action:    runPush,
			},
			{
				Name:   "roots",
				Usage:  "Print the remote roots a pull would synchronize",
				Action: listRoots,
			},
			{
				Name:  "version",
				Usage: "Print detailed version information",
				Action: func(c *cli.Context) error {
					fmt.Printf("Version:    %s\n", version.Version)
					fmt.Printf("Git commit: %s\n", version.GitCommit)
					fmt.Printf("Built:      %s\n", version.BuildTime)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runPull(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.New("local destination path is required")
	}
	if c.NArg() > 2 {
		return errors.New("too many arguments: expected LOCAL [REMOTE]")
	}

	config := &models.Config{
		Device:      c.String("device"),
		AdbPath:     c.String("adb"),
		LocalRoot:   c.Args().Get(0),
		RemoteRoots: c.StringSlice("root"),
		Direction:   models.DirectionPull,
		CopyNewer:   c.Bool("newer"),
		Quiet:       c.Bool("quiet"),
		SkipLog:     !c.Bool("no-skip-log"),
		SkipLogDir:  c.String("skip-log-dir"),
	}
	// A positional REMOTE narrows the run to that single root.
	if remote := c.Args().Get(1); remote != "" {
		config.RemoteRoots = []string{remote}
	}

	manifest, err := db.New()
	if err != nil {
		return fmt.Errorf("failed to open run manifest: %v", err)
	}
	defer manifest.Close()

	bridge := adb.NewBridge(adb.NewRunner(config.AdbPath), config.Device)
	syncer := sync.NewSyncer(bridge, manifest, logging.New(config.Quiet), config)

	return syncer.Run(c.Context)
}

func runPush(c *cli.Context) error {
	return sync.ErrPushNotSupported
}

func listRoots(c *cli.Context) error {
	bridge := adb.NewBridge(adb.NewRunner(c.String("adb")), c.String("device"))
	roots, err := bridge.ListRoots(c.Context)
	if err != nil {
		return err
	}
	for _, root := range roots {
		fmt.Println(root)
	}
	return nil
}
