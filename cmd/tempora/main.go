//  BYZRA ⸻ cmd/tempora/main.go <>
// CLI entrypoint and command routing

package main

import (
	"fmt"
	"os"

	"tempora/internal/config"
	"tempora/internal/util"
)

const version = "v1.0.0"

func main() {
	if len(os.Args) < 2 {
		printHeader()
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "extract":
		handleExtractCommand(os.Args[2:])
	case "resolve":
		handleResolveCommand(os.Args[2:])
	case "run":
		handleRunCommand(os.Args[2:])
	case "infer":
		handleInferCommand(os.Args[2:])
	case "show":
		handleShowCommand(os.Args[2:])
	case "config":
		handleConfigCommand(os.Args[2:])
	case "daemon":
		handleDaemonCommand(os.Args[2:])
	case "help", "-h", "--help":
		util.Wiper()
		printHeader()
		printUsage()
	case "version", "--version":
		printVersion()
	default:
		fmt.Println(util.LBL.Render("[!] Unknown command: " + command))
		printUsage()
		os.Exit(1)
	}
}

// config from the search paths, defaults when none exists
func loadConfig() *config.Config {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		fail("Invalid configuration: " + err.Error())
	}
	return cfg
}

func fail(message string) {
	fmt.Println(util.LBL.Render("[X] " + message))
	os.Exit(1)
}

func usage(line string) {
	fmt.Println(util.SUB.Render("Usage: " + line))
	os.Exit(1)
}

func printHeader() {
	const art = `
	 ████████ ███████ ███    ███ ██████   ██████  ██████   █████
	    ██    ██      ████  ████ ██   ██ ██    ██ ██   ██ ██   ██
	    ██    █████   ██ ████ ██ ██████  ██    ██ ██████  ███████
	    ██    ██      ██  ██  ██ ██      ██    ██ ██   ██ ██   ██
	    ██    ███████ ██      ██ ██       ██████  ██   ██ ██   ██
`

	fmt.Printf("\n%s\n", util.LBL.Render(art))
	fmt.Printf("%s %s\n\n",
		util.NSH.Render("	→"),
		util.SHE.Render("Capture Time, Source & Sidecar Resolver"))
}

func printUsage() {
	fmt.Println(util.LBL.Render("USAGE"))
	fmt.Println("  tempora <command> [options]")
	fmt.Println("")
	fmt.Println(util.LBL.Render("COMMANDS"))
	fmt.Println("  extract <path>... [-o tags.json] [--native]   dump tags of media files")
	fmt.Println("  resolve <tags.json> [-o records.json|.db]     resolve a tag dump into records")
	fmt.Println("  run <path>... [-o records.json|.db]           extract and resolve in one go")
	fmt.Println("  infer <records> [-o inferred.json]            date undated files from their neighbours")
	fmt.Println("  show <file> [--plain] [--native]              explain how one file resolves")
	fmt.Println("  config init [path]                            write the default configuration")
	fmt.Println("  daemon <on|off|status>                        record new files in watched folders")
	fmt.Println("  help                                          show this help information")
	fmt.Println("  version                                       show version information")
	fmt.Println("")
	fmt.Println(util.LBL.Render("RESOLVE OPTIONS"))
	fmt.Println("  --infer                 fill missing dates from neighbouring files")
	fmt.Println("  --sort time|path        order of the written records (default time)")
	fmt.Println("  --native                read EXIF in-process instead of running exiftool")
	fmt.Println("  --flat                  do not descend into subdirectories")
}

func printVersion() {
	fmt.Println(util.LBL.Render("TEMPORA " + version))
	fmt.Println(util.LBL.Render("→ Capture time, source and sidecar resolution for photo archives"))
}
