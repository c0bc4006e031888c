package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// Writes are debounced so a file still being copied in is ingested once,
// after it settles.
const watchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest reference outlines dropped into it",
	Long: `Watch monitors a directory and ingests every file created or modified
inside it. Hidden files are skipped. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := args[0]
		info, err := os.Stat(dir)
		if err != nil {
			fatal("Error reading directory", err)
		}
		if !info.IsDir() {
			fatal("Error watching", fmt.Errorf("%s is not a directory", dir))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := watchDirectory(ctx, dir); err != nil {
			fatal("Error watching directory", err)
		}
	},
}

// watchDirectory ingests files on create and write events, debounced per
// path, until the context is cancelled.
func watchDirectory(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	fmt.Printf("Watching %s for reference outlines\n", dir)

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)
	defer func() {
		mu.Lock()
		for _, timer := range timers {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}

			path := event.Name
			mu.Lock()
			if timer, exists := timers[path]; exists {
				timer.Reset(watchDebounce)
				mu.Unlock()
				continue
			}
			timers[path] = time.AfterFunc(watchDebounce, func() {
				mu.Lock()
				delete(timers, path)
				mu.Unlock()
				ingestWatchedFile(ctx, path)
			})
			mu.Unlock()

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", watchErr)
		}
	}
}

func ingestWatchedFile(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	ref, err := ingestFile(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error ingesting %s: %v\n", path, err)
		return
	}

	fmt.Printf("Ingested %s: %s (%s)\n", filepath.Base(path), ref.Title, ref.ID)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
