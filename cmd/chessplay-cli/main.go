package main

import (
	"flag"
	"log"
	"os"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/profile"

	"github.com/hailam/chessrules/internal/cli"
	"github.com/hailam/chessrules/internal/engine"
	"github.com/hailam/chessrules/internal/storage"
)

var (
	hashSize   = flag.String("hash", "16MB", "transposition table size")
	difficulty = flag.String("difficulty", "medium", "computer strength: easy, medium or hard")
	dbDir      = flag.String("db", "", "database directory (default: platform data directory)")
	noDB       = flag.Bool("nodb", false, "run without persistent storage")
	profMode   = flag.String("profile", "", "write a cpu or mem profile to the working directory")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)

	switch *profMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		log.Fatalf("unknown profile mode %q", *profMode)
	}

	size, err := bytesize.Parse(*hashSize)
	if err != nil {
		log.Fatalf("invalid -hash: %v", err)
	}
	hashMB := int(size / bytesize.MB)
	if hashMB < 1 {
		hashMB = 1
	}

	eng := engine.NewEngine(hashMB)
	d, err := engine.ParseDifficulty(*difficulty)
	if err != nil {
		log.Fatal(err)
	}
	eng.SetDifficulty(d)

	var store *storage.Storage
	if !*noDB {
		if *dbDir != "" {
			store, err = storage.Open(*dbDir)
		} else {
			store, err = storage.NewStorage()
		}
		if err != nil {
			log.Printf("Warning: Failed to open storage: %v", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	if err := cli.New(eng, store, os.Stdout).Run(os.Stdin); err != nil {
		log.Printf("read error: %v", err)
	}
}
