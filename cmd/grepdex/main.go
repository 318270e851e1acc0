package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/spf13/pflag"

	"github.com/grepdex/grepdex"
)

func main() {
	os.Exit(run())
}

func run() int {
	log.SetFlags(0)
	log.SetPrefix("grepdex: ")

	if len(os.Args) < 2 {
		printUsage()
		return 2
	}

	switch os.Args[1] {
	case "build":
		return runBuild(os.Args[2:])
	case "list":
		return runList(os.Args[2:])
	case "verify":
		return runVerify(os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `usage: grepdex <command> [flags] <path>

commands:
  build <project>   build the archive described by a project file
  list <archive>    list the files stored in an archive
  verify <archive>  decode every chunk and check internal consistency
`)
}

func runBuild(args []string) int {
	flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
	chunkSize := flags.Int("chunk-size", grepdex.DefaultChunkSize, "chunk accumulation threshold in bytes")
	workers := flags.Int("workers", 1, "parallel compression workers")
	quiet := flags.BoolP("quiet", "q", false, "suppress progress output")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: grepdex build [flags] <project>")
		return 2
	}
	projectPath := flags.Arg(0)

	opts := []grepdex.Option{
		grepdex.WithChunkSize(*chunkSize),
		grepdex.WithWorkers(*workers),
		grepdex.WithWarnings(func(path string, err error) {
			log.Printf("warning: %v", err)
		}),
	}

	var printer *progressPrinter
	if !*quiet {
		printer = &progressPrinter{out: os.Stderr}
		opts = append(opts, grepdex.WithProgress(printer.update))
	}

	start := time.Now()
	stats, err := grepdex.BuildProject(projectPath, opts...)
	if printer != nil {
		printer.finish()
	}
	if err != nil {
		log.Printf("error: %v", err)
		return 1
	}

	fmt.Printf("%s: %d files, %s in, %s out (%.1fs)\n",
		grepdex.OutputPath(projectPath), stats.FileCount,
		formatBytes(stats.InputBytes), formatBytes(stats.OutputBytes),
		time.Since(start).Seconds())
	return 0
}

func runList(args []string) int {
	flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
	long := flags.BoolP("long", "l", false, "show sizes and timestamps")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: grepdex list [flags] <archive>")
		return 2
	}

	files, err := grepdex.ReadArchive(flags.Arg(0))
	if err != nil {
		log.Printf("error: %v", err)
		return 1
	}

	for _, f := range files {
		if *long {
			mtime := time.Unix(int64(f.TimeStamp), 0).UTC()
			fmt.Printf("%10d  %s  %s\n", f.FileSize, mtime.Format(time.DateTime), f.Name)
		} else {
			fmt.Println(f.Name)
		}
	}
	return 0
}

func runVerify(args []string) int {
	flags := pflag.NewFlagSet("verify", pflag.ContinueOnError)
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: grepdex verify <archive>")
		return 2
	}
	path := flags.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		log.Printf("error: %v", err)
		return 1
	}
	defer f.Close()

	reader, err := grepdex.NewReader(f)
	if err != nil {
		log.Printf("error: %s: %v", path, err)
		return 1
	}

	chunks, fileCount := 0, 0
	for {
		header, files, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("error: %s: chunk %d: %v", path, chunks, err)
			return 1
		}
		if int(header.FileCount) != len(files) {
			log.Printf("error: %s: chunk %d: header says %d files, decoded %d",
				path, chunks, header.FileCount, len(files))
			return 1
		}
		chunks++
		fileCount += len(files)
	}

	fmt.Printf("%s: ok (%d chunks, %d files)\n", path, chunks, fileCount)
	return 0
}

// progressPrinter renders build progress as a single rewritten terminal
// line. It only redraws when the compressed output size changes, so
// repeated events between chunk flushes stay quiet.
type progressPrinter struct {
	out io.Writer

	mu         sync.Mutex
	filesTotal int
	lastOutput uint64
	wrote      bool
}

func (p *progressPrinter) update(ev grepdex.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ev.FilesTotal > 0 {
		p.filesTotal = ev.FilesTotal
	}
	if ev.Stage != grepdex.StageArchiving || ev.OutputBytes == p.lastOutput {
		return
	}
	p.lastOutput = ev.OutputBytes

	percent := 0
	if p.filesTotal > 0 {
		percent = ev.FilesDone * 100 / p.filesTotal
	}
	fmt.Fprintf(p.out, "\r[%3d%%] %d files, %s in, %s out",
		percent, ev.FilesDone, formatBytes(ev.InputBytes), formatBytes(ev.OutputBytes))
	p.wrote = true
}

func (p *progressPrinter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.wrote {
		fmt.Fprintln(p.out)
	}
}

func formatBytes(n uint64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
