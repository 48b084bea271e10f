// Command hostdemo is a minimal application shell that embeds the
// runtime core: it sets the asset root, initializes the platform
// adapter, creates one isolate, runs a script, and optionally
// snapshots/reloads the isolate's companion state. It exists to
// exercise the core's public surface end to end the way a real
// embedding application would, not as a production host.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"

	"github.com/R3E-Network/embedcore/infrastructure/config"
	"github.com/R3E-Network/embedcore/infrastructure/logging"
	"github.com/R3E-Network/embedcore/infrastructure/metrics"
	"github.com/R3E-Network/embedcore/internal/assets"
	"github.com/R3E-Network/embedcore/internal/isolate"
	"github.com/R3E-Network/embedcore/internal/platform"
	"github.com/R3E-Network/embedcore/internal/queue"
	"github.com/R3E-Network/embedcore/internal/snapshot"
)

func main() {
	appRoot := flag.String("app-root", "", "application root directory (must contain js/, modules/, resources/)")
	configPath := flag.String("config", "", "path to a YAML host settings file (optional)")
	script := flag.String("script", `require("./entry.js")`, "inline script to run in the demo isolate")
	snapshotPath := flag.String("snapshot", "", "snapshot file to write after running the script (optional)")
	loadSnapshot := flag.String("load-snapshot", "", "snapshot file to load into a fresh isolate instead of running -script (optional)")
	flag.Parse()

	_ = godotenv.Load() // optional .env; a missing file is not an error

	settings := config.DefaultHostSettings()
	if trimmed := *configPath; trimmed != "" {
		loaded, err := config.LoadHostSettings(trimmed)
		if err != nil {
			log.Fatalf("load host settings %s: %v", trimmed, err)
		}
		settings = loaded
	}
	if *appRoot != "" {
		settings.AppRoot = *appRoot
	}
	if settings.AppRoot == "" {
		log.Fatal("an application root is required: pass -app-root or set app_root in -config")
	}

	logger := logging.New("hostdemo", settings.LogLevel, settings.LogFormat)
	m := metrics.Init("hostdemo")

	roots := assets.New()
	if err := roots.SetAppRootPath(settings.AppRoot); err != nil {
		log.Fatalf("set app root %s: %v", settings.AppRoot, err)
	}
	resolver := assets.NewResolver(roots, "hostdemo", m)

	helper := isolate.NewHelper()
	adapter := platform.Initialize(platform.Config{
		WorkerThreads:        settings.WorkerThreads,
		DelayedWorkerThreads: settings.DelayedWorkerThreads,
		ServiceName:          "hostdemo",
		Metrics:              m,
	}, helper)
	defer platform.Shutdown()

	iso := isolate.New("main", queue.RealClock{}, resolver, logger)
	helper.Register(iso)
	defer helper.Unregister("main")

	if *loadSnapshot != "" {
		hdr, n, err := snapshot.Load(*loadSnapshot, iso)
		if err != nil {
			log.Fatalf("load snapshot %s: %v", *loadSnapshot, err)
		}
		fmt.Printf("loaded snapshot %s (%d bytes, host_magic=%#x, version=%d.%d.%d.%d, arch=%s)\n",
			*loadSnapshot, n, hdr.HostMagic, hdr.Version.Major, hdr.Version.Minor, hdr.Version.Patch, hdr.Version.Build, hdr.PlatformArch)
	} else {
		v, err := iso.RunScript("hostdemo-inline.js", *script)
		if err != nil {
			log.Fatalf("run script: %v", err)
		}
		fmt.Printf("script result: %s\n", v.String())
	}

	if *snapshotPath != "" {
		n, err := snapshot.Create(*snapshotPath, runtime.GOARCH, "hostdemo.Isolate",
			snapshot.RuntimeVersion{Major: 0, Minor: 1, Patch: 0, Build: 0}, iso)
		if err != nil {
			log.Fatalf("create snapshot %s: %v", *snapshotPath, err)
		}
		fmt.Printf("wrote snapshot %s (%d bytes)\n", filepath.Clean(*snapshotPath), n)
	}

	fmt.Printf("worker threads: %d\n", adapter.NumberOfWorkerThreads())
}
