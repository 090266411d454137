// Command blogctl lists, reads and edits posts against a running blog API.
// Editing goes through an autosaving editor session.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfryer1193/blogeditor/client"
	"github.com/dfryer1193/blogeditor/editor"
	"github.com/dfryer1193/blogeditor/editor/view"
	"github.com/dfryer1193/blogeditor/internal/config"
	"github.com/dfryer1193/blogeditor/internal/logger"
)

var errUsage = errors.New("usage: blogctl [flags] list | show <id> | edit [id]")

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	apiURL := flag.String("api", "", "blog API base URL, overrides editor.api_base_url")
	verbose := flag.Bool("v", false, "write debug logs to stderr")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), errUsage.Error())
		flag.PrintDefaults()
	}
	flag.Parse()

	config.LoadDotEnv("")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger.NewWithWriter(os.Stderr, level, cfg.Logging.Format)

	baseURL := cfg.Editor.APIBaseURL
	if *apiURL != "" {
		baseURL = *apiURL
	}

	c, err := client.New(baseURL, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, c, cfg.Editor, flag.Args(), os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			flag.PrintDefaults()
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, service editor.PostService, cfg config.EditorConfig, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "list":
		posts, err := service.ListPosts(ctx)
		if err != nil {
			return fmt.Errorf("failed to list posts: %w", err)
		}
		renderList(out, view.BuildList(posts))
		return nil

	case "show":
		if len(args) != 2 {
			return errUsage
		}
		post, err := service.GetPost(ctx, args[1])
		if err != nil {
			return fmt.Errorf("failed to load post: %w", err)
		}
		renderDetail(out, view.BuildDetail(post))
		return nil

	case "edit":
		var id string
		switch len(args) {
		case 1:
		case 2:
			id = args[1]
		default:
			return errUsage
		}
		return edit(ctx, service, cfg, id, in, out)

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}
