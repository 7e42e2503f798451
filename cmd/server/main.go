package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/chocolatkey/wadthumb"
	"github.com/chocolatkey/wadthumb/pkg/registry"
	"github.com/chocolatkey/wadthumb/pkg/thumbcache"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var listen, root, logLevel string
	var cacheEntries int

	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flagSet.StringVar(&listen, "listen", ":8089", "address to serve thumbnails on")
	flagSet.StringVar(&root, "root", ".", "directory holding the archives to serve")
	flagSet.IntVar(&cacheEntries, "cache-entries", 256, "number of rendered thumbnails to keep")
	flagSet.StringVar(&logLevel, "log-level", "info", "logrus level (debug, info, warn, error)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	reg := registry.New[*wadthumb.Thumbnailer]()
	if err := reg.Register(registry.WADExtension, registry.ComponentID, wadthumb.New); err != nil {
		return err
	}
	defer reg.Unregister(registry.WADExtension)

	cache, err := thumbcache.New(cacheEntries)
	if err != nil {
		return err
	}

	s := &server{root: root, registry: reg, cache: cache}
	http.HandleFunc("/thumbnail", s.handleThumbnail)

	logrus.Infof("serving thumbnails for %s on %s", root, listen)
	return http.ListenAndServe(listen, nil)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Serves thumbnails of WAD archives rendered from their title screen.

Usage:
  server [flags]

Request:
  GET /thumbnail?file=<path under --root>&size=<edge>[&format=bmp|png]

Flags:
%s`, flagSet.FlagUsages())
}
